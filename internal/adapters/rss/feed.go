package rss

import "github.com/earshot-labs/earshot/internal/core/ports"

// Wire types for the subset of RSS 2.0 a podcast feed carries. Item order is
// preserved as published (newest first); ordering policy lives in the core.
type rssDocument struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title     string       `xml:"title"`
	Enclosure rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// mapEntries converts decoded items to port entries, dropping any item
// without a resolvable media URL.
func mapEntries(doc rssDocument) []ports.Entry {
	entries := make([]ports.Entry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		if item.Enclosure.URL == "" {
			continue
		}
		entries = append(entries, ports.Entry{
			URL:   item.Enclosure.URL,
			Title: item.Title,
		})
	}
	return entries
}
