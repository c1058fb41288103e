package syncserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	StatusFileName = "sync_status.json"
	DataFileName   = "app_data.json"
)

var (
	// ErrInUse is returned when another request holds the file.
	ErrInUse = errors.New("file is already in use")
	// ErrNoData is returned by ReadData before the first upload.
	ErrNoData = errors.New("the requested resource does not exist, please upload it first")
	// ErrInvalidDocument is returned when an upload is not valid JSON.
	ErrInvalidDocument = errors.New("uploaded document is not valid JSON")
)

// SyncStatus is the persisted upload metadata. LastSync is epoch seconds,
// -1 until the first upload.
type SyncStatus struct {
	LastSync       int64  `json:"lastSync"`
	TargetFilename string `json:"targetFilename"`
	Version        int64  `json:"version"`
}

func defaultStatus() SyncStatus {
	return SyncStatus{LastSync: -1, TargetFilename: DataFileName}
}

// FileStore keeps the sync status and the uploaded document under one
// directory. A file that is in use is not waited for: callers get ErrInUse.
type FileStore struct {
	dir string

	statusMu sync.Mutex
	dataMu   sync.Mutex
}

// NewFileStore creates dir if needed and initializes the status file.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	s := &FileStore{dir: dir}
	if _, err := s.Status(); err != nil {
		return nil, err
	}
	return s, nil
}

// Status returns the current sync status, creating the default one if absent.
func (s *FileStore) Status() (SyncStatus, error) {
	if !s.statusMu.TryLock() {
		return SyncStatus{}, ErrInUse
	}
	defer s.statusMu.Unlock()
	return s.loadStatus()
}

// ReadData returns the last uploaded document.
func (s *FileStore) ReadData() ([]byte, error) {
	if !s.dataMu.TryLock() {
		return nil, ErrInUse
	}
	defer s.dataMu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, DataFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}

// WriteData stores doc as the given version and stamps the status with at.
func (s *FileStore) WriteData(version int64, doc []byte, at time.Time) (SyncStatus, error) {
	if !json.Valid(doc) {
		return SyncStatus{}, ErrInvalidDocument
	}
	if !s.dataMu.TryLock() {
		return SyncStatus{}, ErrInUse
	}
	defer s.dataMu.Unlock()
	if !s.statusMu.TryLock() {
		return SyncStatus{}, ErrInUse
	}
	defer s.statusMu.Unlock()

	status, err := s.loadStatus()
	if err != nil {
		return SyncStatus{}, err
	}
	if err := writeFile(filepath.Join(s.dir, DataFileName), doc); err != nil {
		return SyncStatus{}, fmt.Errorf("failed to save document: %w", err)
	}

	status.LastSync = at.Unix()
	status.Version = version
	if err := s.saveStatus(status); err != nil {
		return SyncStatus{}, err
	}
	return status, nil
}

// Reset removes the document and the status file.
func (s *FileStore) Reset() error {
	if !s.dataMu.TryLock() {
		return ErrInUse
	}
	defer s.dataMu.Unlock()
	if !s.statusMu.TryLock() {
		return ErrInUse
	}
	defer s.statusMu.Unlock()

	for _, name := range []string{DataFileName, StatusFileName} {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// loadStatus requires statusMu.
func (s *FileStore) loadStatus() (SyncStatus, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, StatusFileName))
	if errors.Is(err, fs.ErrNotExist) {
		status := defaultStatus()
		return status, s.saveStatus(status)
	}
	if err != nil {
		return SyncStatus{}, fmt.Errorf("failed to read sync status: %w", err)
	}

	var status SyncStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return SyncStatus{}, fmt.Errorf("failed to decode sync status: %w", err)
	}
	return status, nil
}

// saveStatus requires statusMu.
func (s *FileStore) saveStatus(status SyncStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode sync status: %w", err)
	}
	if err := writeFile(filepath.Join(s.dir, StatusFileName), raw); err != nil {
		return fmt.Errorf("failed to save sync status: %w", err)
	}
	return nil
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
