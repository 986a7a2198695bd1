package session

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
)

// FileStore keeps every session in one JSON document on disk. Each Get
// re-reads the file and each Put rewrites it whole, so the file is
// always a consistent snapshot of all sessions.
type FileStore struct {
	path string
	mu   sync.Mutex
	data fileData
}

type fileData struct {
	Sessions map[string]*ledger.State `json:"sessions"`
}

func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path: path,
		data: fileData{Sessions: make(map[string]*ledger.State)},
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	file, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&fs.data); err != nil {
		return err
	}
	if fs.data.Sessions == nil {
		fs.data.Sessions = make(map[string]*ledger.State)
	}
	return nil
}

func (fs *FileStore) save() error {
	file, err := os.Create(fs.path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(fs.data)
}

func (fs *FileStore) Get(ctx context.Context, key string) (*ledger.State, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.load(); err != nil {
		return nil, err
	}
	st, ok := fs.data.Sessions[key]
	if !ok {
		return ledger.DefaultState(), nil
	}
	return cloneState(st)
}

func (fs *FileStore) Put(ctx context.Context, key string, st *ledger.State) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.load(); err != nil {
		return err
	}
	copied, err := cloneState(st)
	if err != nil {
		return err
	}
	fs.data.Sessions[key] = copied
	return fs.save()
}

func (fs *FileStore) Delete(ctx context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.load(); err != nil {
		return err
	}
	delete(fs.data.Sessions, key)
	return fs.save()
}

// cloneState deep-copies through the JSON form so callers never share
// slices with the store's snapshot.
func cloneState(st *ledger.State) (*ledger.State, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	out := ledger.DefaultState()
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
