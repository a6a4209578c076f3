// Package models holds the static model catalog and per-model media
// capabilities. The catalog is read-only after startup.
package models

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnknownModel indicates the requested model id or alias is not in the catalog.
var ErrUnknownModel = errors.New("unknown model")

// Capabilities declares how a model accepts media input.
type Capabilities struct {
	// SupportsInline allows image bytes to be embedded directly in the prompt.
	SupportsInline bool
	// SupportsStagedUpload allows arbitrary media via the provider file API.
	SupportsStagedUpload bool
}

// Entry is one catalog row.
type Entry struct {
	ID           string
	DisplayName  string
	Capabilities Capabilities
}

// Catalog resolves model ids and aliases to catalog entries.
type Catalog struct {
	entries map[string]Entry
	aliases map[string]string
	def     string
}

// NewCatalog builds the built-in catalog with the given default model id.
func NewCatalog(defaultModel string) *Catalog {
	c := &Catalog{
		entries: map[string]Entry{},
		aliases: map[string]string{},
	}
	add := func(e Entry, aliases ...string) {
		c.entries[e.ID] = e
		for _, a := range aliases {
			c.aliases[a] = e.ID
		}
	}
	add(Entry{
		ID:          "gemini-2.0-flash",
		DisplayName: "Gemini 2.0 Flash",
		Capabilities: Capabilities{
			SupportsInline:       true,
			SupportsStagedUpload: true,
		},
	}, "flash", "2.0-flash")
	add(Entry{
		ID:          "gemini-2.0-flash-lite",
		DisplayName: "Gemini 2.0 Flash Lite",
		Capabilities: Capabilities{
			SupportsInline:       true,
			SupportsStagedUpload: false,
		},
	}, "lite", "flash-lite")
	add(Entry{
		ID:          "gemini-2.5-pro",
		DisplayName: "Gemini 2.5 Pro",
		Capabilities: Capabilities{
			SupportsInline:       true,
			SupportsStagedUpload: true,
		},
	}, "pro", "2.5-pro")

	if _, ok := c.entries[defaultModel]; ok {
		c.def = defaultModel
	} else {
		c.def = "gemini-2.0-flash"
	}
	return c
}

// Default returns the default model id.
func (c *Catalog) Default() string {
	return c.def
}

// Resolve maps a model id or alias to its catalog entry.
func (c *Catalog) Resolve(ref string) (Entry, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return Entry{}, ErrUnknownModel
	}
	if id, ok := c.aliases[ref]; ok {
		ref = id
	}
	entry, ok := c.entries[ref]
	if !ok {
		return Entry{}, ErrUnknownModel
	}
	return entry, nil
}

// Capabilities returns the media capabilities for a model id. Unknown models
// get zero capabilities, which downgrades media to the unsupported path.
func (c *Catalog) Capabilities(modelID string) Capabilities {
	entry, err := c.Resolve(modelID)
	if err != nil {
		return Capabilities{}
	}
	return entry.Capabilities
}

// List returns all entries sorted by id.
func (c *Catalog) List() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
