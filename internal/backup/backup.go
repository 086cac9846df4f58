// Package backup keeps copies of snippet files before a force sync overwrites
// them, and restores them on request.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/snippetsync/internal/logging"
)

const (
	// DirPerm is the permission for backup directories (rwxr-x---)
	DirPerm = 0o750
	// FilePerm is the permission for backup files (rw-r-----)
	FilePerm = 0o640
)

// Options configures backup behavior
type Options struct {
	Store       string   // Store identifier (vscode, nvim)
	Description string   // Human-readable description
	RunID       string   // Sync run identifier
	Tags        []string // Tags for categorization
}

// Manager stores backups and their index under one directory.
type Manager struct {
	dir string
	now func() time.Time
}

// New returns a manager rooted at dir.
func New(dir string) *Manager {
	return &Manager{dir: dir, now: time.Now}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Create copies sourcePath into the backup directory and records it in the index
func (m *Manager) Create(sourcePath string, opts Options) (*Metadata, error) {
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source path %q: %w", sourcePath, err)
	}

	// #nosec G304 - sourcePath is a snippet file inside a configured store
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %q: %w", sourcePath, err)
	}

	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])

	now := m.now()
	backupID := now.Format("20060102-150405.000000-") + hashStr[:8]

	storeDir := filepath.Join(m.dir, opts.Store)
	if err := os.MkdirAll(storeDir, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create store backup directory: %w", err)
	}

	backupPath := filepath.Join(storeDir, backupID+"_"+filepath.Base(sourcePath))
	if err := os.WriteFile(backupPath, content, FilePerm); err != nil {
		return nil, fmt.Errorf("failed to write backup file: %w", err)
	}

	metadata := &Metadata{
		ID:          backupID,
		SourcePath:  sourcePath,
		BackupPath:  backupPath,
		Store:       opts.Store,
		CreatedAt:   now,
		ModifiedAt:  sourceInfo.ModTime(),
		Hash:        hashStr,
		Size:        sourceInfo.Size(),
		Description: opts.Description,
		RunID:       opts.RunID,
		Tags:        opts.Tags,
	}

	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}
	index.Backups[metadata.ID] = *metadata
	if err := m.SaveIndex(index); err != nil {
		return nil, fmt.Errorf("failed to add backup to index: %w", err)
	}

	logging.Debug("created backup",
		logging.Path(sourcePath),
		logging.Store(opts.Store),
		logging.Key(backupID),
	)
	return metadata, nil
}

// Restore writes a backup back to targetPath, or to its original location when
// targetPath is empty
func (m *Manager) Restore(backupID, targetPath string) (*Metadata, error) {
	metadata, err := m.Get(backupID)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - BackupPath comes from the backup index
	content, err := os.ReadFile(metadata.BackupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	hash := sha256.Sum256(content)
	if hex.EncodeToString(hash[:]) != metadata.Hash {
		return nil, fmt.Errorf("backup file corrupted: hash mismatch")
	}

	if targetPath == "" {
		targetPath = metadata.SourcePath
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}
	// #nosec G306 - snippet files are read by the editors
	if err := os.WriteFile(targetPath, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write target file: %w", err)
	}

	return metadata, nil
}

// Get returns the metadata of one backup
func (m *Manager) Get(backupID string) (*Metadata, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}
	metadata, ok := index.Backups[backupID]
	if !ok {
		return nil, fmt.Errorf("backup %q not found", backupID)
	}
	return &metadata, nil
}

// List returns all backups newest first, optionally filtered by store
func (m *Manager) List(store string) ([]Metadata, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	backups := index.Sorted()
	if store == "" {
		return backups, nil
	}

	filtered := make([]Metadata, 0, len(backups))
	for _, b := range backups {
		if b.Store == store {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Delete removes a backup file and its index entry
func (m *Manager) Delete(backupID string) error {
	index, err := m.LoadIndex()
	if err != nil {
		return fmt.Errorf("failed to load backup index: %w", err)
	}

	metadata, ok := index.Backups[backupID]
	if !ok {
		return fmt.Errorf("backup %q not found", backupID)
	}

	if err := os.Remove(metadata.BackupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}

	delete(index.Backups, backupID)
	return m.SaveIndex(index)
}

// Verify checks that a backup file is present and matches its hash
func (m *Manager) Verify(backupID string) (err error) {
	metadata, err := m.Get(backupID)
	if err != nil {
		return err
	}

	file, err := os.Open(metadata.BackupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("backup file missing: %s", metadata.BackupPath)
		}
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close backup file: %w", closeErr)
		}
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	if got := hex.EncodeToString(hash.Sum(nil)); got != metadata.Hash {
		return fmt.Errorf("backup file corrupted: hash mismatch (expected %s, got %s)", metadata.Hash, got)
	}
	return nil
}

// History returns all backups of one source file, newest first
func (m *Manager) History(sourcePath string) ([]Metadata, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	var history []Metadata
	for _, b := range index.Backups {
		if b.SourcePath == sourcePath {
			history = append(history, b)
		}
	}
	sortNewestFirst(history)
	return history, nil
}
