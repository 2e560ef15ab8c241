package client

import (
	"errors"
	"time"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 2 * time.Minute
)

// Config carries everything Dial needs. Zero timeouts pick the defaults;
// negative ones are rejected.
type Config struct {
	Addr           string // "host:port"
	Password       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("rcon: address required")
	}
	if c.ConnectTimeout < 0 || c.ReadTimeout < 0 {
		return errors.New("rcon: negative timeout")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}
