// Package repositories implements SQL persistence for all domain entities.
//
// Two interchangeable backends sit behind the same repositories: SQLite for
// single-machine use and PostgreSQL for shared deployments. The backend is
// chosen from the database URL at open time; the SQL is written once with ?
// placeholders and rebound for PostgreSQL, and the few spots where the
// dialects genuinely differ (insert id retrieval) branch on the dialect.
//
// Key Implementations:
//   - [UserRepository] : account persistence, Pocket token and sync watermark updates
//   - [SavedItemRepository] : synced article persistence with idempotent upserts
//
// [Open] wires both repositories to one database handle and runs pending
// migrations. Consumers depend on the [UserRepo] and [SavedItemRepo]
// interfaces so tests and alternative backends can stand in.
package repositories
