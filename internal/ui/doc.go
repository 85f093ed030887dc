// Package ui implements the interactive review interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for reviewing saved items against the
// day's trends:
//  1. [TrendListView] : Browse today's trending searches
//  2. [ItemListView] : Walk the saved items ranked against the selected trend
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the [Msg] union type.
// Storage access flows through a [tasks.Worker], which serializes commands so review actions never race a running sync.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) plus review actions:
// a archives, d deletes, f favorites the selected item, and n jumps to the next trend.
package ui
