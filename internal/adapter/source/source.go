// Package source opens the line-delimited wiktextract dump for an import run.
// Inputs are local files or s3://bucket/key objects, optionally gzip or
// zstd compressed (detected by the .gz / .zst suffix).
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/heartmarshall/lexibridge/internal/config"
)

// MaxLineSize is the longest input line accepted (16 MB). Kaikki entries
// for common words run to several megabytes.
const MaxLineSize = 16 * 1024 * 1024

const s3Scheme = "s3://"

// Open returns a reader of the decompressed input at path. A missing input
// is reported before anything else happens, so callers can abort the run
// without touching the store.
func Open(ctx context.Context, path string, storage config.StorageConfig) (io.ReadCloser, error) {
	var (
		raw io.ReadCloser
		err error
	)
	if strings.HasPrefix(path, s3Scheme) {
		raw, err = openObject(ctx, path, storage)
	} else {
		raw, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}

	rc, err := decompress(path, raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	return rc, nil
}

// Lines returns a LineReader over r that accepts lines up to MaxLineSize.
func Lines(r io.Reader) *LineReader {
	return NewLineReader(r, MaxLineSize)
}

// LineReader yields newline-terminated lines like bufio.Scanner, but a line
// longer than the limit does not stop the reader. Its first limit bytes are
// returned with Oversized set and the remainder is discarded.
type LineReader struct {
	r         *bufio.Reader
	limit     int
	line      []byte
	oversized bool
	err       error
	done      bool
}

// NewLineReader returns a LineReader with the given line limit in bytes.
func NewLineReader(r io.Reader, limit int) *LineReader {
	return &LineReader{
		r:     bufio.NewReaderSize(r, 64*1024),
		limit: limit,
	}
}

// Scan advances to the next line. It returns false at end of input or on a
// read error, which Err then reports.
func (l *LineReader) Scan() bool {
	if l.done {
		return false
	}
	l.line = l.line[:0]
	l.oversized = false

	// keep limit+2 bytes so a line of exactly limit bytes still fits with its \r\n
	keep := l.limit + 2
	size := 0
	for {
		chunk, err := l.r.ReadSlice('\n')
		size += len(chunk)
		if room := keep - len(l.line); room > 0 {
			l.line = append(l.line, chunk[:min(room, len(chunk))]...)
		}

		switch {
		case err == nil:
			l.finish(size)
			return true
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			l.done = true
			if size == 0 {
				return false
			}
			l.finish(size)
			return true
		default:
			l.done = true
			l.err = err
			return false
		}
	}
}

func (l *LineReader) finish(size int) {
	if size > len(l.line) {
		l.oversized = true
		l.line = l.line[:l.limit]
		return
	}
	l.line = dropEOL(l.line)
	if len(l.line) > l.limit {
		l.oversized = true
		l.line = l.line[:l.limit]
	}
}

// Bytes returns the current line without its line ending. The slice is
// reused by the next call to Scan.
func (l *LineReader) Bytes() []byte { return l.line }

// Text returns the current line as a string.
func (l *LineReader) Text() string { return string(l.line) }

// Oversized reports whether the current line exceeded the limit and was cut.
func (l *LineReader) Oversized() bool { return l.oversized }

// Limit returns the line limit in bytes.
func (l *LineReader) Limit() int { return l.limit }

// Err returns the first read error other than io.EOF.
func (l *LineReader) Err() error { return l.err }

func dropEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}

func decompress(path string, raw io.ReadCloser) (io.ReadCloser, error) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr, raw}}, nil
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		zr, err := zstd.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), raw}}, nil
	default:
		return raw, nil
	}
}

// stackedReader closes a decoder and the stream beneath it.
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openObject(ctx context.Context, path string, cfg config.StorageConfig) (io.ReadCloser, error) {
	bucket, key, err := splitObjectPath(path)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	if _, err := client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s/%s: %w", bucket, key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

func splitObjectPath(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid object path %q: want s3://bucket/key", path)
	}
	return bucket, key, nil
}
