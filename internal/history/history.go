package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB records commands run through the interactive console.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the history db at path and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			server TEXT NOT NULL,
			command TEXT NOT NULL,
			ran_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_server ON history(server);
	`)
	return err
}

// Entry: one recorded command.
type Entry struct {
	Server  string
	Command string
	RanAt   time.Time
}

// Append records cmd as run against server.
func (d *DB) Append(server, cmd string) error {
	_, err := d.Exec(`INSERT INTO history (server, command, ran_at) VALUES (?, ?, ?)`,
		server, cmd, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Recent returns up to n most recent entries for server, newest first.
func (d *DB) Recent(server string, n int) ([]Entry, error) {
	rows, err := d.Query(`SELECT server, command, ran_at FROM history
		WHERE server = ? ORDER BY id DESC LIMIT ?`, server, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.Server, &e.Command, &at); err != nil {
			return nil, err
		}
		e.RanAt, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("history: bad ran_at %q: %w", at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
