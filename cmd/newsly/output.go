package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"newsly/internal/types"
)

const summaryLimit = 240

func printItems(w io.Writer, items []types.FeedItem, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(items)
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No items.")
		return err
	}

	for i, item := range items {
		fmt.Fprintf(w, "[%d] %s\n", i+1, item.Title)
		if item.Link != "" {
			fmt.Fprintf(w, "    %s\n", item.Link)
		}
		if item.Description != "" {
			fmt.Fprintf(w, "    %s\n", truncate(item.Description, summaryLimit))
		}
		if len(item.Categories) > 0 {
			fmt.Fprintf(w, "    categories: %s\n", strings.Join(item.Categories, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printCategories(w io.Writer, categories []string, format string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(categories)
	}

	for _, c := range categories {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
