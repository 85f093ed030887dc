package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/recall/internal/formatter"
	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

// BulkExportOpts contains configuration for bulk item exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: recall_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	UserIDs    []int64 // Users to export (default: every stored user)
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalUsers        int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []UserExportResult
}

// UserExportResult records the outcome of one user's export.
type UserExportResult struct {
	UserID  int64
	Email   string
	Items   int
	Success bool
	Files   []string
	Error   string
}

// ItemExportJob carries one user's collected items to an export worker.
type ItemExportJob struct {
	Export *models.ItemExport
}

// BulkExport exports saved items for multiple users concurrently with progress tracking.
//
// This method implements a worker pool pattern to efficiently export many users' items.
// It handles partial failures gracefully and generates a manifest file summarizing the export results.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("recall_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	userIDs := opts.UserIDs
	if len(userIDs) == 0 {
		users, err := e.users.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			userIDs = append(userIDs, user.ID)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalUsers:      len(userIDs),
		OutputDirectory: opts.OutputDir,
		Results:         make([]UserExportResult, 0, len(userIDs)),
	}

	jobs := make(chan ItemExportJob, len(userIDs))
	results := make(chan UserExportResult, len(userIDs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, userID := range userIDs {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			export, err := e.collectExport(ctx, userID)
			if err != nil {
				results <- UserExportResult{
					UserID:  userID,
					Success: false,
					Error:   fmt.Sprintf("failed to collect items: %v", err),
				}
				continue
			}

			jobs <- ItemExportJob{Export: export}
			e.sendProgress(prog, exportingUserUpdate(i+1, len(userIDs), export.Email))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(
				completed,
				len(userIDs),
				res.Email,
				len(res.Files),
			))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(
				completed,
				len(userIDs),
				res.Email,
				res.Error,
			))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// collectExport gathers one user's items into an export bundle.
func (e *Engine) collectExport(ctx context.Context, userID int64) (*models.ItemExport, error) {
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := e.items.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ItemExport{
		UserID:     user.ID,
		Email:      user.Email,
		Items:      items,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// exportWorker is a worker goroutine that exports item bundles from the jobs channel.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ItemExportJob,
	results chan<- UserExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSingleUser(job, opts)
	}
}

// exportSingleUser writes a single user's items in the appropriate format.
func (e *Engine) exportSingleUser(j ItemExportJob, opts BulkExportOpts) UserExportResult {
	result := UserExportResult{
		UserID:  j.Export.UserID,
		Email:   j.Export.Email,
		Items:   len(j.Export.Items),
		Success: false,
		Files:   []string{},
	}

	base := filepath.Join(opts.OutputDir, fmt.Sprintf("user_%d", j.Export.UserID))

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(j.Export, base)
		if err != nil {
			result.Error = fmt.Sprintf("CSV export failed: %v", err)
			return result
		}
		result.Files = []string{csvRes.ItemsFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		mdFile, err := formatter.WriteMarkdownExport(j.Export, base+".md")
		if err != nil {
			result.Error = fmt.Sprintf("markdown export failed: %v", err)
			return result
		}
		result.Files = []string{mdFile}
		result.Success = true

	case "txt":
		txtFile, err := formatter.WriteTextExport(j.Export, base+"_items.txt")
		if err != nil {
			result.Error = fmt.Sprintf("text export failed: %v", err)
			return result
		}
		result.Files = []string{txtFile}
		result.Success = true

	case "json":
		fallthrough
	default:
		jsonPath := base + ".json"
		data, err := shared.MarshalJSON(j.Export, true)
		if err != nil {
			result.Error = fmt.Sprintf("JSON marshal failed: %v", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Sprintf("JSON write failed: %v", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}
