package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TrendListView ViewState = iota
	ItemListView
)

// TrendSource fetches the day's trending searches.
type TrendSource interface {
	DailyTrends(ctx context.Context, geo string, days int) ([]models.Trend, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	trends     TrendSource
	worker     *tasks.Worker
	userID     int64
	geo        string
	days       int
	width      int
	height     int
	trendList  list.Model
	trendItems []models.Trend
	trendIndex int
	itemList   list.Model
	current    models.Trend
	status     string
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies. Storage
// access happens only through the worker, which must already be started.
func NewModel(ctx context.Context, trends TrendSource, worker *tasks.Worker, userID int64, geo string, days int) *Model {
	m := &Model{
		ctx:    ctx,
		view:   TrendListView,
		trends: trends,
		worker: worker,
		userID: userID,
		geo:    geo,
		days:   days,
		help:   help.New(),
		keys:   newKeyMap(),
	}
	m.trendList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.trendList.Title = "Today's Trends"
	m.itemList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.itemList.SetFilteringEnabled(false)
	return m
}

// Init starts the TUI by fetching today's trends.
func (m *Model) Init() tea.Cmd {
	return m.fetchTrends()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trendList.SetSize(msg.Width-4, msg.Height-8)
		m.itemList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TrendListView:
			return m.handleTrendListKeys(msg)
		case ItemListView:
			return m.handleItemListKeys(msg)
		}

	case Msg:
		return m.handleAppMsg(msg)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case TrendListView:
		return m.renderTrendList()
	case ItemListView:
		return m.renderItemList()
	default:
		return ""
	}
}

func (m *Model) handleAppMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTrendsFetched:
		data := msg.data.(trendsFetchedData)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		m.err = nil
		m.trendItems = data.trends
		entries := make([]list.Item, len(data.trends))
		for i, trend := range data.trends {
			entries[i] = trendEntry{trend: trend}
		}
		cmd := m.trendList.SetItems(entries)
		m.trendList.SetSize(m.width-4, m.height-8)
		return m, cmd

	case MsgItemsFetched:
		data := msg.data.(itemsFetchedData)
		if data.err != nil {
			m.err = data.err
			m.view = TrendListView
			return m, nil
		}
		m.err = nil
		m.current = data.trend
		m.status = ""
		entries := make([]list.Item, len(data.items))
		for i, relevant := range data.items {
			entries[i] = itemEntry{item: relevant.Item, trend: relevant.Trend}
		}
		cmd := m.itemList.SetItems(entries)
		m.itemList.Title = fmt.Sprintf("Relevant to '%s'", data.trend.Name)
		m.itemList.SetSize(m.width-4, m.height-8)
		m.view = ItemListView
		return m, cmd

	case MsgActionApplied:
		data := msg.data.(actionAppliedData)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("%s failed: %v", data.kind, data.err))
			return m, nil
		}
		return m, m.reflectAction(data.kind, data.itemID)
	}

	return m, nil
}

func (m *Model) handleTrendListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if entry, ok := m.trendList.SelectedItem().(trendEntry); ok {
			m.trendIndex = m.trendList.Index()
			return m, m.fetchItems(entry.trend)
		}
	}

	var cmd tea.Cmd
	m.trendList, cmd = m.trendList.Update(msg)
	return m, cmd
}

func (m *Model) handleItemListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = TrendListView
		m.status = ""
		return m, nil
	case "a":
		return m, m.submitSelected(tasks.CommandArchive)
	case "d":
		return m, m.submitSelected(tasks.CommandDelete)
	case "f":
		return m, m.submitSelected(tasks.CommandFavorite)
	case "n":
		return m, m.nextTrend()
	}

	var cmd tea.Cmd
	m.itemList, cmd = m.itemList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TrendListView:
		m.trendList, cmd = m.trendList.Update(msg)
	case ItemListView:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

// reflectAction mirrors a confirmed remote mutation onto the visible list:
// archived and deleted items disappear, favorited items gain a star.
func (m *Model) reflectAction(kind tasks.CommandKind, itemID int64) tea.Cmd {
	index := -1
	var entry itemEntry
	for i, li := range m.itemList.Items() {
		if e, ok := li.(itemEntry); ok && e.item.ID == itemID {
			index, entry = i, e
			break
		}
	}
	if index == -1 {
		return nil
	}

	switch kind {
	case tasks.CommandArchive:
		m.itemList.RemoveItem(index)
		m.status = styles.ok.Render(fmt.Sprintf("archived '%s'", entry.item.Title))
	case tasks.CommandDelete:
		m.itemList.RemoveItem(index)
		m.status = styles.warn.Render(fmt.Sprintf("deleted '%s'", entry.item.Title))
	case tasks.CommandFavorite:
		entry.favorited = true
		m.status = styles.fav.Render(fmt.Sprintf("favorited '%s'", entry.item.Title))
		return m.itemList.SetItem(index, entry)
	}
	return nil
}

func (m *Model) submitSelected(kind tasks.CommandKind) tea.Cmd {
	entry, ok := m.itemList.SelectedItem().(itemEntry)
	if !ok {
		return nil
	}
	return m.applyRemote(kind, entry.item.ID)
}

func (m *Model) applyRemote(kind tasks.CommandKind, itemID int64) tea.Cmd {
	return func() tea.Msg {
		err := m.worker.Submit(m.ctx, kind, m.userID, itemID)
		return actionAppliedMsg(kind, itemID, err)
	}
}

func (m *Model) nextTrend() tea.Cmd {
	if len(m.trendItems) == 0 {
		return nil
	}
	m.trendIndex = (m.trendIndex + 1) % len(m.trendItems)
	return m.fetchItems(m.trendItems[m.trendIndex])
}

func (m *Model) fetchTrends() tea.Cmd {
	return func() tea.Msg {
		trends, err := m.trends.DailyTrends(m.ctx, m.geo, m.days)
		return trendsFetchedMsg(trends, err)
	}
}

func (m *Model) fetchItems(trend models.Trend) tea.Cmd {
	return func() tea.Msg {
		items, err := m.worker.Relevant(m.ctx, m.userID, trend)
		return itemsFetchedMsg(trend, items, err)
	}
}

func (m *Model) renderTrendList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.trendList.View(), helpView)
}

func (m *Model) renderItemList() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.archive, m.keys.del, m.keys.favorite, m.keys.next, m.keys.back, m.keys.quit,
	})
	if m.status != "" {
		return fmt.Sprintf("%s\n%s\n\n%s", m.itemList.View(), m.status, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.itemList.View(), helpView)
}
