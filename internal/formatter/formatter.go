// package formatter provides functions to export saved items to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

// ExportToCSV converts an ItemExport to CSV format with columns: ID, PocketID, Title, Excerpt, URL, TimeAdded
func ExportToCSV(export *models.ItemExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "PocketID", "Title", "Excerpt", "URL", "TimeAdded"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i := range export.Items {
		item := &export.Items[i]
		timeAdded := ""
		if item.TimeAdded != nil {
			timeAdded = item.TimeAdded.UTC().Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatInt(item.ID, 10),
			item.PocketID,
			item.Title,
			item.ExcerptText(),
			item.URLText(),
			timeAdded,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an ItemExport to a Markdown listing
func ExportToMarkdown(export *models.ItemExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Saved items for %s\n\n", export.Email))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n", len(export.Items)))
	buf.WriteString(fmt.Sprintf("**Exported**: %s\n\n", export.ExportedAt.UTC().Format("2006-01-02")))

	buf.WriteString("## Items\n\n")
	for i := range export.Items {
		item := &export.Items[i]
		link := item.URLText()
		if link == "" {
			link = item.ReadURL()
		}
		addedPart := ""
		if item.TimeAdded != nil {
			addedPart = fmt.Sprintf(" [%s]", item.TimeAdded.UTC().Format("2006-01-02"))
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s\n", i+1, item.Title, link, addedPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an ItemExport to plain text format
func ExportToText(export *models.ItemExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("User: %s\n", export.Email))
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(export.Items)))

	for i := range export.Items {
		item := &export.Items[i]
		link := item.URLText()
		if link == "" {
			link = item.ReadURL()
		}
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, item.Title, link))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON summary of an export (without the items)
func ToMetadataJSON(export *models.ItemExport) ([]byte, error) {
	metadata := struct {
		UserID     int64
		Email      string
		ItemCount  int
		ExportedAt time.Time
	}{
		UserID:     export.UserID,
		Email:      export.Email,
		ItemCount:  len(export.Items),
		ExportedAt: export.ExportedAt,
	}
	return shared.MarshalJSON(metadata, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports saved items to CSV format with an accompanying metadata JSON file.
//
// Defaults to user_{id} as the base filename & creates {base}_items.csv and {base}_metadata.json
func WriteCSVExport(export *models.ItemExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = fmt.Sprintf("user_%d", export.UserID)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ItemsFile:    itemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports saved items to a single Markdown file.
//
// Defaults to user_{id}.md as the filename.
func WriteMarkdownExport(export *models.ItemExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("user_%d.md", export.UserID)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports saved items to plain text format.
//
// Defaults to user_{id}_items.txt as the filename.
func WriteTextExport(export *models.ItemExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("user_%d_items.txt", export.UserID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteBulkExportManifest writes a JSON summary of a bulk export run. The
// result parameter is typed any to keep the formatter free of task types.
func WriteBulkExportManifest(result any, format string, path string) error {
	manifest := struct {
		Format     string
		FinishedAt time.Time
		Result     any
	}{
		Format:     format,
		FinishedAt: time.Now().UTC(),
		Result:     result,
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}
