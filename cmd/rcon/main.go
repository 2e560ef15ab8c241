// rcon: remote console for game servers speaking the Source RCON protocol.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"

	"dev.c0redev.rcon/internal/client"
	"dev.c0redev.rcon/internal/config"
	"dev.c0redev.rcon/internal/history"
)

var (
	flagConfig   string
	flagServer   string
	flagAddr     string
	flagPassword string
	flagConnectT time.Duration
	flagReadT    time.Duration
)

func main() {
	log.SetFlags(0)

	root := &cobra.Command{
		Use:           "rcon",
		Short:         "Remote console client for RCON game servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath(), "profile file")
	root.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "named server from the profile file")
	root.PersistentFlags().StringVarP(&flagAddr, "addr", "a", "", "server address host:port (or RCON_ADDR)")
	root.PersistentFlags().StringVarP(&flagPassword, "password", "p", "", "rcon password (or RCON_PASSWORD; prompted if empty)")
	root.PersistentFlags().DurationVar(&flagConnectT, "connect-timeout", 0, "dial timeout (default 10s)")
	root.PersistentFlags().DurationVar(&flagReadT, "read-timeout", 0, "per-read timeout (default 2m)")

	exec := &cobra.Command{
		Use:   "exec <command>...",
		Short: "Run one command and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(strings.Join(args, " "))
		},
	}
	console := &cobra.Command{
		Use:   "console",
		Short: "Interactive console (commands are recorded in history)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole()
		},
	}
	root.AddCommand(exec, console)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

// resolveConfig merges flags, environment and the profile file into a dial
// config. Precedence: flags, then env, then profile.
func resolveConfig() (client.Config, error) {
	cfg := client.Config{
		Addr:           flagAddr,
		Password:       flagPassword,
		ConnectTimeout: flagConnectT,
		ReadTimeout:    flagReadT,
	}
	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("RCON_ADDR")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("RCON_PASSWORD")
	}

	if flagConfig != "" {
		f, err := config.Load(flagConfig)
		if err != nil {
			return client.Config{}, err
		}
		if s, ok := f.Lookup(flagServer); ok {
			if cfg.Addr == "" {
				cfg.Addr = s.Addr
			}
			if cfg.Password == "" {
				cfg.Password = s.Password
			}
			if cfg.ConnectTimeout == 0 {
				cfg.ConnectTimeout = time.Duration(s.ConnectTimeout)
			}
			if cfg.ReadTimeout == 0 {
				cfg.ReadTimeout = time.Duration(s.ReadTimeout)
			}
		} else if flagServer != "" {
			return client.Config{}, fmt.Errorf("no server %q in %s", flagServer, flagConfig)
		}
	}

	if cfg.Addr == "" {
		return client.Config{}, fmt.Errorf("no server address: use --addr, RCON_ADDR or a profile")
	}
	if cfg.Password == "" {
		pw, err := promptPassword()
		if err != nil {
			return client.Config{}, err
		}
		cfg.Password = pw
	}
	return cfg, nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !terminal.IsTerminal(fd) {
		return "", fmt.Errorf("no password: use --password or RCON_PASSWORD")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := terminal.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func runExec(command string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	c, err := client.Dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	resp, err := c.Command(command)
	if err != nil {
		return err
	}
	fmt.Println(resp.Body)
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rcon_history.db")
}

func runConsole() error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	c, err := client.Dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	log.Println("connected to", c.RemoteAddr())

	var hist *history.DB
	if path := historyPath(); path != "" {
		hist, err = history.Open(path)
		if err != nil {
			log.Println("history disabled:", err)
		} else {
			defer hist.Close()
		}
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case line == ".history":
			printHistory(hist, cfg.Addr)
			continue
		}
		resp, err := c.Command(line)
		if err != nil {
			return err
		}
		fmt.Println(resp.Body)
		if hist != nil {
			if err := hist.Append(cfg.Addr, line); err != nil {
				log.Println("history:", err)
			}
		}
	}
}

func printHistory(hist *history.DB, server string) {
	if hist == nil {
		log.Println("history disabled")
		return
	}
	entries, err := hist.Recent(server, 20)
	if err != nil {
		log.Println("history:", err)
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Printf("%s  %s\n", entries[i].RanAt.Local().Format("2006-01-02 15:04"), entries[i].Command)
	}
}
