// Package storage provides the persistence collaborators for the task
// collection: a single-file JSON store and an optional Redis read cache.
package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"focus-api/domain"
)

const tasksFileName = "tasks.json"

// FileStore persists the whole task collection as one JSON array in a
// single file, so the whole state lives under one storage key.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the data directory if needed and returns a store
// writing to tasks.json inside it.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: filepath.Join(dataDir, tasksFileName)}, nil
}

// LoadTasks reads the persisted collection. A missing file yields an empty
// collection; malformed content is logged and likewise treated as empty,
// never surfaced as an error.
func (f *FileStore) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Task{}, nil
		}
		return nil, err
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		log.WithError(err).WithField("path", f.path).Warn("corrupt task file, starting empty")
		return []domain.Task{}, nil
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// SaveTasks replaces the persisted collection. The write goes through a
// temp file and rename so a crash never leaves a half-written file behind.
func (f *FileStore) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
