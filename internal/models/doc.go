// Package models defines domain entities for the recall saved-article service.
//
// The package contains two categories of types:
//
// 1. Persistent entities, stored through [github.com/desertthunder/recall/internal/repositories]:
//   - [User] : account rows carrying the Pocket access token and sync watermark
//   - [SavedItem] : one synced Pocket article, unique per (user, pocket id)
//
// 2. Transient values passed between components:
//   - [UpsertSavedItem] : field set applied by the sync engine's reconciliation
//   - [SavedItemQuery] : filter/sort/limit for item listings
//   - [Trend] : one trending search keyword with its explore link
//   - [Mail] : a rendered digest message handed to the mail client
//
// Remote wire records never reach this package; the Pocket client normalizes
// them into its own item variants before the engine touches storage.
package models
