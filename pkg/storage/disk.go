// Package storage provides whole-object file storage for the audit log.
//
// Three drivers are available:
//   - "local"   local filesystem (default)
//   - "s3"      S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//   - "memory"  in-process map, for tests and ephemeral runs
//
// None of the drivers offers a partial append; callers read the whole
// object and write it back.
//
//	disk, _ := storage.Open(ctx, storage.Options{Driver: "local", LocalRoot: "storage"})
//	_ = disk.Put(ctx, "logs/log_20240309", data)
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Exists reports whether a file exists at path. A non-nil error means
	// the answer is unknown.
	Exists(ctx context.Context, path string) (bool, error)

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put replaces the file at path with content, creating parents as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists filenames directly inside directory, sorted.
	Files(ctx context.Context, directory string) ([]string, error)
}

// Options selects and configures a driver.
type Options struct {
	Driver    string // local | s3 | memory
	LocalRoot string
	S3        S3Options
}

type S3Options struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string // leave empty for real AWS
}

// Open boots the configured driver.
func Open(ctx context.Context, opts Options) (Disk, error) {
	switch opts.Driver {
	case "", "local":
		return NewLocal(opts.LocalRoot), nil
	case "s3":
		return NewS3(ctx, opts.S3)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q (supported: local, s3, memory)", opts.Driver)
	}
}
