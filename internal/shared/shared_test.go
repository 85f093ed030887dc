package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "short string untouched",
			in:   "rust",
			max:  10,
			want: "rust",
		},
		{
			name: "long string gets ellipsis",
			in:   "a very long saved item title",
			max:  10,
			want: "a very ...",
		},
		{
			name: "tiny max returns bare prefix",
			in:   "abcdef",
			max:  2,
			want: "ab",
		},
		{
			name: "exact length untouched",
			in:   "abcde",
			max:  5,
			want: "abcde",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Truncate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	t.Run("nil renders placeholder", func(t *testing.T) {
		if got := FormatTime(nil); got != "(never)" {
			t.Errorf("FormatTime(nil) = %v, want (never)", got)
		}
	})

	t.Run("timestamp renders date and time", func(t *testing.T) {
		ts := time.Date(2021, 4, 21, 9, 30, 0, 0, time.UTC)
		if got := FormatTime(&ts); got != "2021-04-21 09:30" {
			t.Errorf("FormatTime() = %v, want 2021-04-21 09:30", got)
		}
	})
}

func TestDetectDialect(t *testing.T) {
	tc := []struct {
		name string
		url  string
		want Dialect
	}{
		{name: "postgres scheme", url: "postgres://u:p@localhost/db", want: DialectPostgres},
		{name: "postgresql scheme", url: "postgresql://u:p@localhost/db", want: DialectPostgres},
		{name: "sqlite path", url: "./recall.db", want: DialectSQLite},
		{name: "in memory", url: ":memory:", want: DialectSQLite},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDialect(tt.url); got != tt.want {
				t.Errorf("DetectDialect(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty ids")
	}
	if a == b {
		t.Error("expected unique ids")
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Run("creates missing directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tmp", "tui.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		logger.Info("hello")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected log file to exist, got %v", err)
		}
		if len(data) == 0 {
			t.Error("expected log output in file")
		}
	})

	t.Run("unwritable path fails", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "taken")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create blocking file: %v", err)
		}

		if _, err := NewFileLogger(filepath.Join(blocker, "tui.log")); err == nil {
			t.Fatal("expected error for path under a regular file")
		}
	})
}
