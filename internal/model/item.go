package model

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strconv"
	"time"
)

// Item represents one catalog entry. Character entries share the same
// shape and are partitioned off by the category sentinel.
type Item struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	Description   string        `json:"description,omitempty"`
	History       string        `json:"history,omitempty"`
	Image         string        `json:"image,omitempty"`
	Stock         Stock         `json:"stock"`
	Dimensions    Dimensions    `json:"dimensions"`
	Materials     string        `json:"materials,omitempty"`
	Manufacturing Manufacturing `json:"manufacturing"`
	Logs          []LogEntry    `json:"logs"`
	Comments      string        `json:"comments,omitempty"`
}

// CategoryCharacters partitions the collection into catalog items and
// character entries without a separate storage table.
const CategoryCharacters = "Personajes"

// Stock statuses. Status is derived from Current vs MinLevel and is
// never edited independently.
const (
	StockStatusOK  = "In Stock"
	StockStatusLow = "Low Stock"
)

// DefaultMinLevel is applied when a caller creates an item without an
// explicit minimum stock level.
const DefaultMinLevel = 5

// Stock holds the quantity tracking fields of an item.
type Stock struct {
	Current  int    `json:"current"`
	MinLevel int    `json:"minLevel"`
	Status   string `json:"status"`
}

// DeriveStatus recomputes Status from Current and MinLevel. It must be
// called after every mutation of Current or MinLevel.
func (s *Stock) DeriveStatus() {
	if s.Current < s.MinLevel {
		s.Status = StockStatusLow
	} else {
		s.Status = StockStatusOK
	}
}

// Dimensions are free-form, unit-annotated measurement strings.
type Dimensions struct {
	Width    string `json:"width,omitempty"`
	Height   string `json:"height,omitempty"`
	Depth    string `json:"depth,omitempty"`
	Capacity string `json:"capacity,omitempty"`
}

// Manufacturing holds production metadata for an item.
type Manufacturing struct {
	Manufacturer    string `json:"manufacturer,omitempty"`
	ProductionFiles string `json:"productionFiles,omitempty"`
}

// LogEntry is one annotation on an item. Logs are append-only in
// storage; display order is computed, never stored.
type LogEntry struct {
	Date   time.Time `json:"date"`
	Author string    `json:"author"`
	Text   string    `json:"text"`
}

// IsCharacter reports whether the item belongs to the characters view.
func (i *Item) IsCharacter() bool {
	return i.Category == CategoryCharacters
}

// DisplayLogs returns the item's logs sorted descending by date. When
// an item has no logs but carries a legacy comment, the comment is
// surfaced as a single synthetic entry so old records still display.
func (i *Item) DisplayLogs() []LogEntry {
	if len(i.Logs) == 0 {
		if i.Comments != "" {
			return []LogEntry{{Date: time.Now(), Author: "Sistema", Text: i.Comments}}
		}
		return nil
	}

	logs := make([]LogEntry, len(i.Logs))
	copy(logs, i.Logs)
	sort.SliceStable(logs, func(a, b int) bool {
		return logs[a].Date.After(logs[b].Date)
	})
	return logs
}

// NewItemID generates a time-based identifier, matching the format of
// migrated records. The random suffix keeps two ids minted in the same
// millisecond distinct.
func NewItemID() string {
	buf := make([]byte, 3)
	rand.Read(buf)
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + hex.EncodeToString(buf)
}
