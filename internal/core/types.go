// Package core provides the shared domain types and error taxonomy for the
// catalog addon.
package core

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ExternalIDPrefix is the required prefix for cross-reference identifiers.
// Items whose external identifier does not carry it are ineligible.
const ExternalIDPrefix = "tt"

// CacheKey identifies one cached catalog list: a (credential, category)
// pair. The credential is hashed so raw API keys never appear in key names
// or log output.
type CacheKey string

// NewCacheKey builds the cache key for a credential/category pair.
func NewCacheKey(credential, category string) CacheKey {
	return CacheKey(fmt.Sprintf("%016x:%s", xxhash.Sum64String(credential), category))
}

// RawRecord is one item as returned by the metadata source at discovery
// time, before enrichment. Field names mirror the TMDB discover payload.
type RawRecord struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	PosterPath       string `json:"poster_path"`
	BackdropPath     string `json:"backdrop_path"`
	ReleaseDate      string `json:"release_date"`
	Overview         string `json:"overview"`
	OriginalLanguage string `json:"original_language"`
}

// Enrichment holds the per-item secondary lookup results: whether at least
// one subscription-based offering exists in the target region, and the
// cross-reference identifier (empty when absent).
type Enrichment struct {
	Available  bool
	ExternalID string
}

// Eligible reports whether an enriched item may enter the catalog.
func (e Enrichment) Eligible() bool {
	return e.Available && ValidExternalID(e.ExternalID)
}

// ValidExternalID reports whether id is a well-formed cross-reference
// identifier (non-empty, "tt"-prefixed).
func ValidExternalID(id string) bool {
	return len(id) > len(ExternalIDPrefix) && id[:len(ExternalIDPrefix)] == ExternalIDPrefix
}

// CatalogItem is one canonical, enrichment-complete catalog entry in the
// meta shape the media-center client consumes. ID is the external
// identifier and is never empty.
type CatalogItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Poster      string `json:"poster,omitempty"`
	Background  string `json:"background,omitempty"`
	Description string `json:"description"`
	ReleaseInfo string `json:"releaseInfo"`
}
