package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bedrock-chat/pkg/logger"

	_ "modernc.org/sqlite"
)

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS chat_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStorage keeps key/value pairs in a single SQLite table.
type SQLiteStorage struct {
	path string
	db   *sql.DB
}

// NewSQLiteStorage creates a SQLiteStorage for the database file at path.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Init opens the database and creates the table.
func (s *SQLiteStorage) Init() error {
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageInit, err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %v", ErrStorageInit, err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("%w: database ping failed: %v", ErrStorageInit, err)
	}

	if _, err := db.Exec(createKVTableSQL); err != nil {
		db.Close()
		return fmt.Errorf("%w: failed to create table: %v", ErrStorageInit, err)
	}

	s.db = db
	logger.Infof("SQLite storage initialized at %s", s.path)
	return nil
}

func (s *SQLiteStorage) Get(key string) (string, bool, error) {
	if s.db == nil {
		return "", false, ErrStorageInit
	}

	var value string
	err := s.db.QueryRow("SELECT value FROM chat_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}

	return value, true, nil
}

func (s *SQLiteStorage) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if s.db == nil {
		return ErrStorageInit
	}

	_, err := s.db.Exec(
		"INSERT INTO chat_kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) Delete(key string) error {
	if s.db == nil {
		return ErrStorageInit
	}

	result, err := s.db.Exec("DELETE FROM chat_kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if affected == 0 {
		return ErrKeyNotFound
	}

	return nil
}

func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Backup writes a consistent copy of the database next to it.
func (s *SQLiteStorage) Backup() error {
	if s.db == nil {
		return ErrStorageInit
	}
	if s.path == ":memory:" {
		return nil
	}

	backupPath := fmt.Sprintf("%s.backup_%d", s.path, time.Now().UnixNano())
	if _, err := s.db.Exec("VACUUM INTO ?", backupPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	logger.Infof("Backup completed: %s", backupPath)
	return nil
}
