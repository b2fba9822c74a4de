// Package fallback bundles the static dataset served read-only when
// the remote store is unreachable.
package fallback

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

//go:embed data
var content embed.FS

var load = sync.OnceValues(func() (dataset, error) {
	var d dataset

	raw, err := content.ReadFile("data/tableware.json")
	if err != nil {
		return d, fmt.Errorf("reading bundled tableware: %w", err)
	}
	if err := json.Unmarshal(raw, &d.items); err != nil {
		return d, fmt.Errorf("decoding bundled tableware: %w", err)
	}

	raw, err = content.ReadFile("data/characters.json")
	if err != nil {
		return d, fmt.Errorf("reading bundled characters: %w", err)
	}
	if err := json.Unmarshal(raw, &d.characters); err != nil {
		return d, fmt.Errorf("decoding bundled characters: %w", err)
	}

	return d, nil
})

type dataset struct {
	items      []model.Item
	characters []model.Character
}

// Items returns the bundled tableware items.
func Items() []model.Item {
	d, err := load()
	if err != nil {
		panic(err) // embedded data is broken, nothing can run
	}
	out := make([]model.Item, len(d.items))
	copy(out, d.items)
	return out
}

// Characters returns the bundled character records.
func Characters() []model.Character {
	d, err := load()
	if err != nil {
		panic(err)
	}
	out := make([]model.Character, len(d.characters))
	copy(out, d.characters)
	return out
}

// AllItems returns the full fallback collection: tableware items plus
// the character records converted into the item shape, so both views
// work offline.
func AllItems() []model.Item {
	items := Items()
	for _, c := range Characters() {
		items = append(items, c.AsItem())
	}
	return items
}
