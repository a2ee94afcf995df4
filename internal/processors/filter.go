package processors

import (
	"strings"

	"newsly/internal/types"
)

const (
	ModeInclude = "include"
	ModeExclude = "exclude"
)

type FilterFunc func(types.FeedItem) bool

type FilterProcessor struct {
	name     string
	filterFn FilterFunc
}

func NewFilterProcessor(name string, filterFn FilterFunc) *FilterProcessor {
	return &FilterProcessor{
		name:     name,
		filterFn: filterFn,
	}
}

func (f *FilterProcessor) Name() string {
	return f.name
}

// Match reports whether item passes the filter. A filter without a
// predicate lets everything through.
func (f *FilterProcessor) Match(item types.FeedItem) bool {
	return f.filterFn == nil || f.filterFn(item)
}

// Apply returns the matching items in their original order. items is not
// modified.
func (f *FilterProcessor) Apply(items []types.FeedItem) []types.FeedItem {
	if f.filterFn == nil {
		return items
	}

	matched := make([]types.FeedItem, 0, len(items))
	for _, item := range items {
		if f.filterFn(item) {
			matched = append(matched, item)
		}
	}
	return matched
}

// CategoryFilter keeps items whose categories contain category exactly.
// An empty category selects everything.
func CategoryFilter(category string) *FilterProcessor {
	if category == "" {
		return NewFilterProcessor("category", nil)
	}

	return NewFilterProcessor("category", func(item types.FeedItem) bool {
		return item.HasCategory(category)
	})
}

// FilterByCategory returns items unchanged when category is empty, otherwise
// the subsequence whose categories contain category (case-sensitive). A
// category nothing carries yields an empty slice.
func FilterByCategory(items []types.FeedItem, category string) []types.FeedItem {
	return CategoryFilter(category).Apply(items)
}

func KeywordFilter(name string, keywords []string, mode string) *FilterProcessor {
	lowered := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			lowered = append(lowered, keyword)
		}
	}
	if len(lowered) == 0 {
		return NewFilterProcessor(name, nil)
	}

	return NewFilterProcessor(name, func(item types.FeedItem) bool {
		titleLower := strings.ToLower(item.Title)

		matches := false
		for _, keyword := range lowered {
			if strings.Contains(titleLower, keyword) {
				matches = true
				break
			}
		}

		switch mode {
		case ModeInclude:
			return matches
		case ModeExclude:
			return !matches
		default:
			return true
		}
	})
}

func ChainFilters(name string, filters ...*FilterProcessor) *FilterProcessor {
	return NewFilterProcessor(name, func(item types.FeedItem) bool {
		for _, filter := range filters {
			if !filter.Match(item) {
				return false
			}
		}
		return true
	})
}
