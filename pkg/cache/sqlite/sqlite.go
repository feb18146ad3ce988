/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sqlite is the SQLite implementation of the utmkeeper Cache
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/trickstercache/utmkeeper/pkg/cache"
	"github.com/trickstercache/utmkeeper/pkg/cache/envelope"
	"github.com/trickstercache/utmkeeper/pkg/cache/options"
	"github.com/trickstercache/utmkeeper/pkg/cache/status"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Cache implements the cache.Cache interface
var _ cache.Cache = &Cache{}

// ErrInvalidTable is returned when the configured table name is not a plain identifier
var ErrInvalidTable = errors.New("invalid sqlite table name")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Cache describes a SQLite Cache
type Cache struct {
	Name   string
	Config *options.Options
	db     *sql.DB
	now    func() time.Time

	qUpsert, qSelect, qTouch, qDelete, qPurge string
}

// New returns a new, unopened SQLite Cache
func New(name string, cfg *options.Options) *Cache {
	if cfg == nil {
		cfg = options.New()
		cfg.Provider = "sqlite"
	}
	cfg.Initialize(name)
	return &Cache{
		Name:   name,
		Config: cfg,
		now:    time.Now,
	}
}

// Configuration returns the Cache's options
func (c *Cache) Configuration() *options.Options {
	return c.Config
}

// Connect opens the database, creates the table and purges expired rows
func (c *Cache) Connect() error {
	t := c.Config.SQLite.Table
	if !tableName.MatchString(t) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, t)
	}
	c.qUpsert = `INSERT INTO ` + t + ` (cache_key, value, expires) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET value = excluded.value, expires = excluded.expires`
	c.qSelect = `SELECT value, expires FROM ` + t + ` WHERE cache_key = ?`
	c.qTouch = `UPDATE ` + t + ` SET expires = ? WHERE cache_key = ? AND (expires = 0 OR expires > ?)`
	c.qDelete = `DELETE FROM ` + t + ` WHERE cache_key = ?`
	c.qPurge = `DELETE FROM ` + t + ` WHERE expires > 0 AND expires <= ?`

	fn := filepath.Clean(c.Config.SQLite.Filename)
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return err
	}
	dsn := fn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping sqlite db: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ` + t + ` (
		cache_key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create table: %w", err)
	}
	c.db = db
	_, err = db.Exec(c.qPurge, c.now().UnixNano())
	return err
}

// Close closes the database
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// Store upserts the data with its expiration
func (c *Cache) Store(cacheKey string, data []byte, ttl time.Duration) error {
	if cacheKey == "" {
		return cache.ErrInvalidKey
	}
	if data == nil {
		data = []byte{}
	}
	_, err := c.db.Exec(c.qUpsert, cacheKey, data,
		unixNano(envelope.Expiration(c.now(), ttl)))
	return err
}

// Retrieve returns the data for cacheKey. An expired row is deleted and
// reported as a miss.
func (c *Cache) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	var data []byte
	var expires int64
	err := c.db.QueryRow(c.qSelect, cacheKey).Scan(&data, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	now := c.now()
	if expires > 0 && expires <= now.UnixNano() {
		c.Remove(cacheKey)
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	return data, status.LookupStatusHit, nil
}

// SetTTL updates the expiration of an unexpired row
func (c *Cache) SetTTL(cacheKey string, ttl time.Duration) error {
	now := c.now()
	res, err := c.db.Exec(c.qTouch, unixNano(envelope.Expiration(now, ttl)),
		cacheKey, now.UnixNano())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cache.ErrKNF
	}
	return nil
}

// Remove deletes the rows for the provided keys
func (c *Cache) Remove(cacheKeys ...string) error {
	if len(cacheKeys) == 0 {
		return nil
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	for _, k := range cacheKeys {
		if _, err := tx.Exec(c.qDelete, k); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
