// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/recall/internal/services"
)

// MockCollection is a test double for the sync engine's remote collection.
// Retrieve replays Pages in order and returns an empty page once they run
// out, so a caller paging to exhaustion always terminates.
type MockCollection struct {
	Pages     []*services.ItemPage
	Queries   []services.RetrieveQuery
	Archived  []string
	Deleted   []string
	Favorited []string
	Err       error
}

func (m *MockCollection) Retrieve(ctx context.Context, query *services.RetrieveQuery) (*services.ItemPage, error) {
	if query != nil {
		m.Queries = append(m.Queries, *query)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	idx := len(m.Queries) - 1
	if idx < 0 || idx >= len(m.Pages) {
		return &services.ItemPage{}, nil
	}
	return m.Pages[idx], nil
}

func (m *MockCollection) Archive(ctx context.Context, itemID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Archived = append(m.Archived, itemID)
	return nil
}

func (m *MockCollection) Delete(ctx context.Context, itemID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, itemID)
	return nil
}

func (m *MockCollection) Favorite(ctx context.Context, itemID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Favorited = append(m.Favorited, itemID)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
