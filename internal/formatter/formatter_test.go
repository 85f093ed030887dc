package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/recall/internal/models"
	th "github.com/desertthunder/recall/internal/testing"
)

func testExport() *models.ItemExport {
	added := time.Date(2021, 4, 21, 10, 15, 0, 0, time.UTC)
	excerpt := "a short excerpt"
	itemURL := "https://example.com/rust"

	return &models.ItemExport{
		UserID: 1,
		Email:  "reader@example.com",
		Items: []models.SavedItem{
			{
				ID:        10,
				UserID:    1,
				PocketID:  "p10",
				Title:     "rust language",
				Excerpt:   &excerpt,
				URL:       &itemURL,
				TimeAdded: &added,
			},
			{
				ID:       11,
				UserID:   1,
				PocketID: "p11",
				Title:    "go generics",
			},
		},
		ExportedAt: time.Date(2021, 4, 22, 8, 0, 0, 0, time.UTC),
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,PocketID,Title,Excerpt,URL,TimeAdded") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "10,p10,rust language,a short excerpt,https://example.com/rust,2021-04-21T10:15:00Z") {
			t.Errorf("CSV missing full record, got: %s", output)
		}
		if !strings.Contains(output, "11,p11,go generics,,,") {
			t.Errorf("CSV missing sparse record, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Saved items for reader@example.com") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Items**: 2") {
			t.Errorf("Markdown missing item count")
		}
		if !strings.Contains(output, "**Exported**: 2021-04-22") {
			t.Errorf("Markdown missing export date")
		}
		if !strings.Contains(output, "## Items") {
			t.Errorf("Markdown missing items section")
		}
		if !strings.Contains(output, "1. [rust language](https://example.com/rust) [2021-04-21]") {
			t.Errorf("Markdown missing first item, got: %s", output)
		}
		if !strings.Contains(output, "2. [go generics](https://app.getpocket.com/read/p11)") {
			t.Errorf("Markdown missing reader link fallback, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "User: reader@example.com") {
			t.Errorf("Text missing user")
		}
		if !strings.Contains(output, "Items: 2") {
			t.Errorf("Text missing item count")
		}
		if !strings.Contains(output, "1. rust language (https://example.com/rust)") {
			t.Errorf("Text missing first item")
		}
		if !strings.Contains(output, "2. go generics (https://app.getpocket.com/read/p11)") {
			t.Errorf("Text missing second item")
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testExport())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var metadata struct {
			UserID    int64
			Email     string
			ItemCount int
		}
		if err := json.Unmarshal(data, &metadata); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if metadata.UserID != 1 || metadata.Email != "reader@example.com" || metadata.ItemCount != 2 {
			t.Errorf("unexpected metadata %+v", metadata)
		}
		if strings.Contains(string(data), "rust language") {
			t.Errorf("metadata should not embed the items")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.ItemsFile != "user_1_items.csv" {
				t.Errorf("Expected items file 'user_1_items.csv', got '%s'", result.ItemsFile)
			}
			if result.MetadataFile != "user_1_metadata.json" {
				t.Errorf("Expected metadata file 'user_1_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.ItemsFile)
			th.AssertFileExists(t, result.MetadataFile)

			csvContent := th.MustReadFile(t, result.ItemsFile)
			if !strings.Contains(csvContent, "ID,PocketID,Title,Excerpt,URL,TimeAdded") {
				t.Errorf("CSV missing headers")
			}
			if !strings.Contains(csvContent, "rust language") {
				t.Errorf("CSV missing item data")
			}

			metadataContent := th.MustReadFile(t, result.MetadataFile)
			if !strings.Contains(metadataContent, "reader@example.com") {
				t.Errorf("Metadata JSON missing expected fields")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testExport(), "custom_export")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.ItemsFile != "custom_export_items.csv" {
				t.Errorf("Expected 'custom_export_items.csv', got '%s'", result.ItemsFile)
			}
			if result.MetadataFile != "custom_export_metadata.json" {
				t.Errorf("Expected 'custom_export_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.ItemsFile)
			th.AssertFileExists(t, result.MetadataFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteMarkdownExport(testExport(), "")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if path != "user_1.md" {
				t.Errorf("Expected 'user_1.md', got '%s'", path)
			}
			th.AssertFileExists(t, path)

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, "# Saved items for reader@example.com") {
				t.Errorf("Markdown missing title")
			}
			if !strings.Contains(content, "1. [rust language](https://example.com/rust)") {
				t.Errorf("Markdown missing item listing")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteMarkdownExport(testExport(), "custom_items.md")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if path != "custom_items.md" {
				t.Errorf("Expected 'custom_items.md', got '%s'", path)
			}
			th.AssertFileExists(t, path)
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteTextExport(testExport(), "")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}

		if path != "user_1_items.txt" {
			t.Errorf("Expected 'user_1_items.txt', got '%s'", path)
		}
		th.AssertFileExists(t, path)

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, "User: reader@example.com") {
			t.Errorf("Text missing user line")
		}
	})

	t.Run("WriteBulkExportManifest", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		summary := map[string]int{"TotalUsers": 2}
		if err := WriteBulkExportManifest(summary, "json", "manifest.json"); err != nil {
			t.Fatalf("WriteBulkExportManifest failed: %v", err)
		}

		th.AssertFileExists(t, "manifest.json")

		var manifest struct {
			Format string
			Result map[string]int
		}
		if err := json.Unmarshal([]byte(th.MustReadFile(t, "manifest.json")), &manifest); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if manifest.Format != "json" {
			t.Errorf("Expected format 'json', got '%s'", manifest.Format)
		}
		if manifest.Result["TotalUsers"] != 2 {
			t.Errorf("Manifest missing result payload")
		}
	})
}
