package bridge

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"
)

// Error summary codes, one per kind of skipped record or item.
const (
	CodeJSONError   = "WARN_JSON_ERROR"
	CodeNoWord      = "WARN_NO_WORD"
	CodeTransFormat = "WARN_TRANS_FORMAT"
	CodeLineTooLong = "WARN_LINE_TOO_LONG"
	CodeGetID       = "ERROR_GET_ID"
	CodeResolve     = "ERROR_RESOLVE"
	CodeUnexpected  = "ERROR_UNEXPECTED"
)

// ErrorSink receives one diagnostic per skipped or failed record.
type ErrorSink interface {
	Record(line int, code, msg string, raw []byte)
}

// ErrorSummary writes a plain-text triage file with one line per problem:
//
//	L<line> <CODE>: <message> | <raw snippet>
type ErrorSummary struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	maxRaw int
	count  int
}

// NewErrorSummary writes to w; raw snippets are cut to maxRaw bytes.
func NewErrorSummary(w io.Writer, maxRaw int) *ErrorSummary {
	s := &ErrorSummary{w: bufio.NewWriter(w), maxRaw: maxRaw}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// CreateErrorSummary truncates or creates the file at path.
func CreateErrorSummary(path string, maxRaw int) (*ErrorSummary, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create error summary %s: %w", path, err)
	}
	return NewErrorSummary(f, maxRaw), nil
}

// Record appends one diagnostic line. Write errors are ignored so the
// summary can never abort a run.
func (s *ErrorSummary) Record(line int, code, msg string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	fmt.Fprintf(s.w, "L%d %s: %s", line, code, oneLine([]byte(msg), 0))
	if len(raw) > 0 {
		fmt.Fprintf(s.w, " | %s", oneLine(raw, s.maxRaw))
	}
	s.w.WriteByte('\n')
}

// Count returns the number of recorded lines.
func (s *ErrorSummary) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close flushes buffered lines and closes the underlying file, if any.
func (s *ErrorSummary) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush error summary: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// oneLine flattens newlines and cuts b to limit bytes on a rune boundary.
// limit <= 0 means no limit.
func oneLine(b []byte, limit int) string {
	b = bytes.TrimSpace(b)
	truncated := false
	if limit > 0 && len(b) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(b[cut]) {
			cut--
		}
		b = b[:cut]
		truncated = true
	}
	out := bytes.NewBuffer(make([]byte, 0, len(b)+3))
	for _, c := range b {
		if c == '\n' || c == '\r' {
			c = ' '
		}
		out.WriteByte(c)
	}
	if truncated {
		out.WriteString("...")
	}
	return out.String()
}
