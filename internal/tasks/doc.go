// Package tasks orchestrates synchronization and digest composition with
// real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines the reconciliation operations:
//
//  1. [SyncEngine.Sync] : Delta sync
//     - Pages through the user's remote collection from the stored watermark
//     - Upserts active items, deletes archived/deleted ones
//     - Commits the final page's watermark exactly once, at the end
//
//  2. [SyncEngine.SyncFull] : Full sync
//     - Same loop seeded without a watermark, re-fetching the entire
//       collection (used after schema changes a delta would not backfill)
//
//  3. [SyncEngine.Archive] / [SyncEngine.Delete] / [SyncEngine.Favorite] :
//     item-level remote mutations; archive and delete re-run a delta sync so
//     local storage reflects the change
//
// A sync call either applies every page and then moves the watermark, or
// fails with the previous watermark intact. Reconciliation is idempotent, so
// a rerun after a mid-pagination failure reprocesses rows harmlessly.
//
// # Digest Composition
//
// [Engine.BuildDigestMail] walks daily trends, pulls the top relevant saved
// items per trend, and renders the HTML digest. When nothing matches, it
// falls back to the oldest saved items so the mail is never empty.
//
// # Progress Reporting
//
// All long operations accept a progress channel. The [ProgressUpdate] struct
// contains phase, step counters, messages, and optional data for UI
// rendering. Updates use select with default to prevent blocking.
//
// # Bulk Export
//
// [Engine.BulkExport] writes every user's saved items to disk with a worker
// pool, one file set per user plus a run manifest. Formats are delegated to
// the formatter package.
//
// # Worker
//
// [Worker] owns an engine and serializes commands received over a channel,
// one at a time, so concurrent sync requests for the same user cannot race
// on the watermark. The TUI talks to storage only through it: item mutations
// via [Worker.Submit] and per-trend relevance queries via [Worker.Relevant].
package tasks
