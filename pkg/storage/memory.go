package storage

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
)

// Memory keeps files in a map. Puts counts writes for tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
	Puts  int
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

func (d *Memory) Exists(ctx context.Context, p string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.files[p]
	return ok, nil
}

func (d *Memory) Get(ctx context.Context, p string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[p]
	if !ok {
		return nil, fmt.Errorf("storage/memory: get %s: %w", p, ErrNotExist)
	}
	return slices.Clone(data), nil
}

func (d *Memory) Put(ctx context.Context, p string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[p] = slices.Clone(content)
	d.Puts++
	return nil
}

func (d *Memory) Delete(ctx context.Context, p string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, p)
	return nil
}

func (d *Memory) Files(ctx context.Context, directory string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dir := strings.TrimSuffix(directory, "/")
	var out []string
	for p := range d.files {
		if path.Dir(p) == dir || (dir == "" && !strings.Contains(p, "/")) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out, nil
}
