package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"bedrock-chat/pkg/logger"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DiskStorage keeps one file per key under dataDir/keys and caches what it has read.
type DiskStorage struct {
	dataDir string
	mu      sync.RWMutex
	cache   map[string]string
}

// NewDiskStorage creates a DiskStorage rooted at dataDir.
func NewDiskStorage(dataDir string) *DiskStorage {
	return &DiskStorage{
		dataDir: dataDir,
		cache:   make(map[string]string),
	}
}

// Init creates the data directory.
func (d *DiskStorage) Init() error {
	if err := d.createDirectories(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	logger.Infof("Disk storage initialized at %s", d.dataDir)
	return nil
}

func (d *DiskStorage) createDirectories() error {
	dirs := []string{
		d.dataDir,
		filepath.Join(d.dataDir, "keys"),
		filepath.Join(d.dataDir, "backup"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

func (d *DiskStorage) keyPath(key string) string {
	return filepath.Join(d.dataDir, "keys", key+".json")
}

func (d *DiskStorage) Get(key string) (string, bool, error) {
	if !validKey.MatchString(key) {
		return "", false, ErrInvalidKey
	}

	d.mu.RLock()
	if value, exists := d.cache[key]; exists {
		d.mu.RUnlock()
		return value, true, nil
	}
	d.mu.RUnlock()

	data, err := os.ReadFile(d.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.mu.Lock()
	d.cache[key] = string(data)
	d.mu.Unlock()

	return string(data), true, nil
}

func (d *DiskStorage) Set(key, value string) error {
	if !validKey.MatchString(key) {
		return ErrInvalidKey
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := writeFileAtomic(d.keyPath(key), []byte(value)); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.cache[key] = value
	return nil
}

func (d *DiskStorage) Delete(key string) error {
	if !validKey.MatchString(key) {
		return ErrInvalidKey
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.keyPath(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	delete(d.cache, key)
	return nil
}

func (d *DiskStorage) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache = make(map[string]string)
	return nil
}

// Backup copies every key file into backup/backup_<unixnano>/keys.
func (d *DiskStorage) Backup() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	backupDir := filepath.Join(d.dataDir, "backup", fmt.Sprintf("backup_%d", time.Now().UnixNano()))
	dstDir := filepath.Join(backupDir, "keys")

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	files, err := os.ReadDir(filepath.Join(d.dataDir, "keys"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	for _, file := range files {
		if file.IsDir() || strings.HasSuffix(file.Name(), ".tmp") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.dataDir, "keys", file.Name()))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
		if err := os.WriteFile(filepath.Join(dstDir, file.Name()), data, 0644); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
	}

	logger.Infof("Backup completed: %s", backupDir)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}
