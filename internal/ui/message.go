package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTrendsFetched MsgKind = iota
	MsgItemsFetched
	MsgActionApplied
)

type trendsFetchedData struct {
	trends []models.Trend
	err    error
}

// trendsFetchedMsg is the constructor for [MsgTrendsFetched]
func trendsFetchedMsg(trends []models.Trend, err error) Msg {
	return Msg{kind: MsgTrendsFetched, data: trendsFetchedData{trends, err}}
}

type itemsFetchedData struct {
	trend models.Trend
	items []tasks.RelevantItem
	err   error
}

// itemsFetchedMsg is the constructor for [MsgItemsFetched]
func itemsFetchedMsg(trend models.Trend, items []tasks.RelevantItem, err error) Msg {
	return Msg{kind: MsgItemsFetched, data: itemsFetchedData{trend, items, err}}
}

type actionAppliedData struct {
	kind   tasks.CommandKind
	itemID int64
	err    error
}

// actionAppliedMsg is the constructor for [MsgActionApplied]
func actionAppliedMsg(kind tasks.CommandKind, itemID int64, err error) Msg {
	return Msg{kind: MsgActionApplied, data: actionAppliedData{kind, itemID, err}}
}
