// Package eventlog writes and reads zstd-compressed JSON lines. The headless
// report uses it to persist a run's structured event log.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const bufSize = 64 * 1024

// Writer appends one JSON document per line to a zstd stream.
type Writer struct {
	mu  sync.Mutex
	f   *os.File // nil when wrapping a caller-owned io.Writer
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// Create opens path for writing, creating parent directories as needed.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("eventlog: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	lw, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	lw.f = f
	return lw, nil
}

// NewWriter wraps dst. Close flushes the zstd frame but leaves dst open.
func NewWriter(dst io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, bufSize)}, nil
}

// Write marshals v and appends it as a single line.
func (lw *Writer) Write(v any) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.w == nil {
		return fmt.Errorf("eventlog: write after close")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("eventlog: marshal: %w", err)
	}
	if _, err := lw.w.Write(b); err != nil {
		return err
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return err
	}
	lw.n++
	return nil
}

// Count returns how many lines have been written.
func (lw *Writer) Count() int {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.n
}

// Close flushes buffered lines and ends the zstd frame.
func (lw *Writer) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.w == nil {
		return nil
	}
	err := lw.w.Flush()
	if cerr := lw.enc.Close(); err == nil {
		err = cerr
	}
	if lw.f != nil {
		if cerr := lw.f.Close(); err == nil {
			err = cerr
		}
		lw.f = nil
	}
	lw.w = nil
	lw.enc = nil
	return err
}

// ReadAll decodes every line of a compressed stream into a T.
func ReadAll[T any](src io.Reader) ([]T, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	defer dec.Close()

	var out []T
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, bufSize), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			return out, fmt.Errorf("eventlog: line %d: %w", line, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("eventlog: %w", err)
	}
	return out, nil
}

// ReadFile is ReadAll over the file at path.
func ReadFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	defer f.Close()
	return ReadAll[T](f)
}
