// Package auditlog appends free-text audit lines to one file per UTC day.
//
// The backing Disk only supports whole-file reads and writes, so an append
// is exists → get → concat → put. There is no lock or conditional write:
// two concurrent appenders to the same segment can each read the old
// content and the later put wins, losing the other line.
//
// Append never returns an error. Failures go to the logger (component
// auditlog) and the storefront_auditlog_appends_total{result="failed"}
// counter.
package auditlog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

const (
	segmentPrefix   = "log_"
	segmentExt      = ".txt"
	timestampLayout = "2006-01-02 15:04:05"
)

// Appender is what controllers and services depend on.
type Appender interface {
	Append(ctx context.Context, message string)
}

// Log writes segments under dir on disk.
type Log struct {
	disk storage.Disk
	dir  string
	now  func() time.Time
}

type Option func(*Log)

// WithClock replaces time.Now; tests use it to cross a day boundary.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func New(disk storage.Disk, dir string, opts ...Option) *Log {
	l := &Log{disk: disk, dir: strings.Trim(dir, "/"), now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// SegmentKey names the segment for t's UTC date, e.g. log_20240309.
func SegmentKey(t time.Time) string {
	return segmentPrefix + t.UTC().Format("20060102")
}

// Line formats one entry: "2024-03-09 14:30:00 - message\n".
func Line(t time.Time, message string) string {
	return t.UTC().Format(timestampLayout) + " - " + message + "\n"
}

func (l *Log) segmentPath(key string) string {
	return path.Join(l.dir, key+segmentExt)
}

// Append adds message to today's segment. The segment and the line stamp
// come from a single clock reading.
func (l *Log) Append(ctx context.Context, message string) {
	now := l.now()
	l.appendAt(ctx, now, SegmentKey(now), message)
}

// AppendTo adds message to the named segment, stamped with the current time.
func (l *Log) AppendTo(ctx context.Context, segmentKey, message string) {
	l.appendAt(ctx, l.now(), segmentKey, message)
}

func (l *Log) appendAt(ctx context.Context, t time.Time, segmentKey, message string) {
	if err := l.appendTo(ctx, segmentKey, Line(t, message)); err != nil {
		metrics.AuditAppends.WithLabelValues("failed").Inc()
		logger.Component(ctx, "auditlog").Warn("audit append failed",
			"segment", segmentKey, "error", err)
		return
	}
	metrics.AuditAppends.WithLabelValues("ok").Inc()
}

func (l *Log) appendTo(ctx context.Context, segmentKey, line string) error {
	p := l.segmentPath(segmentKey)

	exists, err := l.disk.Exists(ctx, p)
	if err != nil {
		return fmt.Errorf("auditlog: exists %s: %w", p, err)
	}

	content := []byte(line)
	if exists {
		current, err := l.disk.Get(ctx, p)
		if err != nil {
			return fmt.Errorf("auditlog: read %s: %w", p, err)
		}
		content = append(current, content...)
	}

	if err := l.disk.Put(ctx, p, content); err != nil {
		return fmt.Errorf("auditlog: write %s: %w", p, err)
	}
	return nil
}

// Read returns the full content of a segment.
func (l *Log) Read(ctx context.Context, segmentKey string) ([]byte, error) {
	return l.disk.Get(ctx, l.segmentPath(segmentKey))
}

// Segments lists the segment keys present, oldest first.
func (l *Log) Segments(ctx context.Context) ([]string, error) {
	files, err := l.disk.Files(ctx, l.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, f := range files {
		name := path.Base(f)
		if strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, segmentExt) {
			keys = append(keys, strings.TrimSuffix(name, segmentExt))
		}
	}
	return keys, nil
}

// Discard is an Appender that drops everything.
type Discard struct{}

func (Discard) Append(context.Context, string) {}
