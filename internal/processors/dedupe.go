package processors

import (
	"strings"

	"newsly/internal/types"
	"newsly/internal/utils/hash"
)

// Dedupe drops items whose key was already seen earlier in items, keeping
// the first occurrence and the original order.
func Dedupe(items []types.FeedItem) []types.FeedItem {
	seen := make(map[string]struct{}, len(items))
	result := make([]types.FeedItem, 0, len(items))

	for _, item := range items {
		key := ItemKey(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}

	return result
}

// ItemKey identifies an item by its link, or by its title when it has no
// link. It doubles as the entry id of rendered feeds.
func ItemKey(item types.FeedItem) string {
	if strings.TrimSpace(item.Link) == "" {
		return hash.ItemID("title:" + item.Title)
	}
	return hash.ItemID(item.Link)
}
