package processors

import (
	"slices"

	"newsly/internal/types"
)

// Categories returns every distinct category carried by items, sorted.
func Categories(items []types.FeedItem) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)

	for _, item := range items {
		for _, category := range item.Categories {
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			categories = append(categories, category)
		}
	}

	slices.Sort(categories)
	return categories
}
