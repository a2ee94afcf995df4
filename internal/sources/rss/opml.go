package rss

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"newsly/internal/types"
)

type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Body    OPMLBody `xml:"body"`
}

type OPMLBody struct {
	Outlines []OPMLOutline `xml:"outline"`
}

type OPMLOutline struct {
	Title    string        `xml:"title,attr"`
	Text     string        `xml:"text,attr"`
	Type     string        `xml:"type,attr"`
	XMLURL   string        `xml:"xmlUrl,attr"`
	Outlines []OPMLOutline `xml:"outline"`
}

// ParseOPML returns every outline carrying an xmlUrl, depth-first in
// document order.
func ParseOPML(data []byte) ([]types.FeedSource, error) {
	var opml OPML
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&opml); err != nil {
		return nil, fmt.Errorf("failed to parse OPML: %w", err)
	}

	var sources []types.FeedSource
	extractSources(&sources, opml.Body.Outlines)

	return sources, nil
}

func extractSources(result *[]types.FeedSource, outlines []OPMLOutline) {
	for _, outline := range outlines {
		if url := strings.TrimSpace(outline.XMLURL); url != "" {
			name := outline.Title
			if name == "" {
				name = outline.Text
			}

			*result = append(*result, types.FeedSource{
				URL:  url,
				Name: strings.TrimSpace(name),
			})
		}

		if len(outline.Outlines) > 0 {
			extractSources(result, outline.Outlines)
		}
	}
}

func LoadOPMLFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OPML file: %w", err)
	}
	return data, nil
}
