package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/gosha-popular/fstock-bot/models"
	"github.com/gosha-popular/fstock-bot/utils"
)

// PostgresStore keeps the subscriber registry (users and channels) in
// PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, waits for the server to come up
// (retrying the ping up to maxRetries times) and runs schema migrations.
func NewPostgresStore(dsn string, maxRetries int, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	ping := pingRetry(maxRetries, logger)
	if err := ping.Do("postgres-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

// pingRetry builds the startup ping policy from the configured attempt
// count. Anything below one attempt is clamped so the ping still runs.
func pingRetry(maxRetries int, logger *utils.Logger) *utils.RetryConfig {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &utils.RetryConfig{MaxAttempts: maxRetries, BaseDelay: 2 * time.Second, Logger: logger}
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id    BIGINT      PRIMARY KEY,
			username   TEXT        NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS channels (
			channel_id BIGINT  PRIMARY KEY,
			title      TEXT    NOT NULL DEFAULT '',
			is_active  BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE INDEX IF NOT EXISTS idx_channels_active ON channels(is_active);
	`)
	return err
}

// AddUser registers a private-chat subscriber; repeat subscriptions update
// the stored username.
func (ps *PostgresStore) AddUser(id int64, username string) error {
	_, err := ps.db.Exec(`
		INSERT INTO users (user_id, username) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username
	`, id, username)
	if err != nil {
		return fmt.Errorf("postgres: add user: %w", err)
	}
	return nil
}

// Users returns every registered subscriber.
func (ps *PostgresStore) Users() ([]models.User, error) {
	rows, err := ps.db.Query(`SELECT user_id, username, created_at FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddChannel registers a broadcast channel, reactivating it if it was
// previously deactivated.
func (ps *PostgresStore) AddChannel(id int64, title string) error {
	_, err := ps.db.Exec(`
		INSERT INTO channels (channel_id, title, is_active) VALUES ($1, $2, TRUE)
		ON CONFLICT (channel_id) DO UPDATE SET title = EXCLUDED.title, is_active = TRUE
	`, id, title)
	if err != nil {
		return fmt.Errorf("postgres: add channel: %w", err)
	}
	return nil
}

// ActiveChannels returns channels reports are still delivered to.
func (ps *PostgresStore) ActiveChannels() ([]models.Channel, error) {
	rows, err := ps.db.Query(`
		SELECT channel_id, title, is_active FROM channels
		WHERE is_active ORDER BY channel_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var c models.Channel
		if err := rows.Scan(&c.ID, &c.Title, &c.IsActive); err != nil {
			return nil, fmt.Errorf("postgres: scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// DeactivateChannel marks a channel the bot was removed from.
func (ps *PostgresStore) DeactivateChannel(id int64) error {
	_, err := ps.db.Exec(`UPDATE channels SET is_active = FALSE WHERE channel_id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deactivate channel: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
