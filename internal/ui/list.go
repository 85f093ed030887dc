package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/recall/internal/models"
)

var (
	_ list.Item = trendEntry{}
	_ list.Item = itemEntry{}
)

// trendEntry wraps [models.Trend] to implement [list.Item].
type trendEntry struct {
	trend models.Trend
}

func (e trendEntry) FilterValue() string { return e.trend.Name }
func (e trendEntry) Title() string       { return e.trend.Name }
func (e trendEntry) Description() string { return e.trend.ExploreLink() }

// itemEntry wraps a ranked [models.SavedItem] to implement [list.Item].
type itemEntry struct {
	item      models.SavedItem
	trend     models.Trend
	favorited bool
}

func (e itemEntry) FilterValue() string { return e.item.Title }
func (e itemEntry) Title() string {
	if e.favorited {
		return "★ " + e.item.Title
	}
	return e.item.Title
}
func (e itemEntry) Description() string {
	if desc := e.item.ExcerptText(); desc != "" {
		return desc
	}
	if desc := e.item.URLText(); desc != "" {
		return desc
	}
	return e.item.ReadURL()
}
