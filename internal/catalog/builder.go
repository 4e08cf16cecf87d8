// Package catalog implements the core of the addon: building canonical
// catalog items from raw metadata, the paginated fetch pipeline that
// populates the cache, and the service answering catalog reads.
package catalog

import (
	"indcat/internal/core"
)

// Image size segments for derived artwork URLs.
const (
	posterSize     = "/w500"
	backgroundSize = "/w780"
)

// Builder normalizes a raw metadata record plus its enrichment into a
// canonical catalog item. It is pure: no lookups, no side effects.
type Builder struct {
	imageBaseURL string
}

// NewBuilder creates a builder deriving artwork URLs from imageBaseURL.
func NewBuilder(imageBaseURL string) *Builder {
	return &Builder{imageBaseURL: imageBaseURL}
}

// Build returns the catalog item for raw and enr, or ok=false when the
// record is unusable: missing identifier or title, or an enrichment without
// a valid external identifier. Missing artwork paths are not errors; the
// corresponding fields stay empty.
func (b *Builder) Build(raw core.RawRecord, enr core.Enrichment) (core.CatalogItem, bool) {
	if raw.ID == 0 || raw.Title == "" {
		return core.CatalogItem{}, false
	}
	if !core.ValidExternalID(enr.ExternalID) {
		return core.CatalogItem{}, false
	}

	item := core.CatalogItem{
		ID:          enr.ExternalID,
		Type:        "movie",
		Name:        raw.Title,
		Description: raw.Overview,
		ReleaseInfo: raw.ReleaseDate,
	}
	if raw.PosterPath != "" {
		item.Poster = b.imageBaseURL + posterSize + raw.PosterPath
	}
	if raw.BackdropPath != "" {
		item.Background = b.imageBaseURL + backgroundSize + raw.BackdropPath
	}

	return item, true
}
