package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/city"
)

// JSONLZstdWriter is the sink behind a city's event and audit streams. Each
// value becomes one JSON line in `<dir>/<prefix>-YYYY-MM-DD-HH.jsonl.zst`; a new
// file starts when the wall-clock UTC hour changes, independent of game time.
type JSONLZstdWriter struct {
	dir    string
	prefix string
	now    func() time.Time

	mu     sync.Mutex
	bucket string
	f      *os.File
	zw     *zstd.Encoder
	buf    *bufio.Writer
	enc    *json.Encoder
}

func NewJSONLZstdWriter(dir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{dir: dir, prefix: prefix, now: time.Now}
}

// Write appends v and flushes the line buffer into the compressor.
func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if bucket := w.now().UTC().Format("2006-01-02-15"); bucket != w.bucket {
		if err := w.switchLocked(bucket); err != nil {
			return err
		}
	}
	// Encode terminates each value with '\n'.
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	return w.buf.Flush()
}

// Close finishes the current zstd frame. Write after Close opens a new file.
func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked()
}

func (w *JSONLZstdWriter) switchLocked(bucket string) error {
	if err := w.finishLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.file(bucket), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.zw = f, zw
	w.buf = bufio.NewWriterSize(zw, 64*1024)
	w.enc = json.NewEncoder(w.buf)
	w.enc.SetEscapeHTML(false)
	w.bucket = bucket
	return nil
}

func (w *JSONLZstdWriter) finishLocked() error {
	if w.f == nil {
		return nil
	}
	_ = w.buf.Flush()
	err := w.zw.Close()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	w.f, w.zw, w.buf, w.enc = nil, nil, nil, nil
	w.bucket = ""
	return err
}

func (w *JSONLZstdWriter) file(bucket string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, bucket))
}

// EventLogger writes one JSONL entry per hour, day and bill event.
type EventLogger struct{ w *JSONLZstdWriter }

func NewEventLogger(cityDir string) *EventLogger {
	return &EventLogger{w: NewJSONLZstdWriter(filepath.Join(cityDir, "events"), "events")}
}

func (l *EventLogger) WriteEvent(e city.Event) error { return l.w.Write(e) }
func (l *EventLogger) Close() error                  { return l.w.Close() }

// AuditLogger writes ledger mutation entries.
type AuditLogger struct{ w *JSONLZstdWriter }

func NewAuditLogger(cityDir string) *AuditLogger {
	return &AuditLogger{w: NewJSONLZstdWriter(filepath.Join(cityDir, "audit"), "audit")}
}

func (l *AuditLogger) WriteAudit(e city.AuditEntry) error { return l.w.Write(e) }
func (l *AuditLogger) Close() error                       { return l.w.Close() }

// ReadFile decodes every JSONL line of one rotated file into values of T.
func ReadFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []T
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			return out, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}
