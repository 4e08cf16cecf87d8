package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"indcat/internal/core"
	"indcat/internal/observability"
)

// MetadataSource is the consumed contract of the upstream metadata API.
type MetadataSource interface {
	// Discover returns one page of raw records for the given original
	// language. An empty slice signals the end of pagination; a non-success
	// response surfaces as an error.
	Discover(ctx context.Context, credential, category string, page int) ([]core.RawRecord, error)

	// Enrich performs the per-item availability and cross-reference lookups.
	Enrich(ctx context.Context, credential string, id int64) (core.Enrichment, error)
}

// Pipeline orchestrates one populate run: paginated discovery, per-item
// enrichment, eligibility filtering, building and deduplication.
type Pipeline struct {
	source  MetadataSource
	builder *Builder
	// pageCeiling bounds pagination so a run terminates even if the
	// upstream never returns an empty page.
	pageCeiling int
	hooks       observability.Hooks
}

// NewPipeline creates a fetch pipeline. A nil hooks falls back to NopHooks.
func NewPipeline(source MetadataSource, builder *Builder, pageCeiling int, hooks observability.Hooks) *Pipeline {
	if hooks == nil {
		hooks = observability.NopHooks{}
	}
	return &Pipeline{
		source:      source,
		builder:     builder,
		pageCeiling: pageCeiling,
		hooks:       hooks,
	}
}

// Populate produces the finalized ordered catalog list for one
// (credential, category) pair. Pages are walked in ascending order until an
// empty page, a page-level failure, or the ceiling; a page failure keeps
// the items already collected. Enrichment failures skip only the affected
// item. The returned error is non-nil only for a total failure: the very
// first page failed and nothing was collected.
func (p *Pipeline) Populate(ctx context.Context, credential, category string) ([]core.CatalogItem, error) {
	log := slog.With(
		"run_id", uuid.NewString(),
		"category", category,
		"key", core.NewCacheKey(credential, category),
	)
	log.Info("populate run started")
	p.hooks.FetchStarted(category)

	var collected []core.CatalogItem
	var pageErr error
	pages := 0

	for page := 1; page <= p.pageCeiling; page++ {
		records, err := p.source.Discover(ctx, credential, category, page)
		if err != nil {
			// Page-level transport failure stops pagination for this run
			// but does not discard what earlier pages produced.
			p.hooks.UpstreamError("discover")
			log.Warn("discover page failed, stopping pagination", "page", page, "error", err)
			pageErr = err
			break
		}
		if len(records) == 0 {
			log.Debug("no more results", "page", page)
			break
		}
		pages++

		for _, raw := range records {
			enr, err := p.source.Enrich(ctx, credential, raw.ID)
			if err != nil {
				// Enrichment failures are contained per item.
				p.hooks.UpstreamError("enrich")
				log.Warn("enrichment failed, skipping item", "movie_id", raw.ID, "error", err)
				continue
			}
			if !enr.Eligible() {
				continue
			}
			if item, ok := p.builder.Build(raw, enr); ok {
				collected = append(collected, item)
			}
		}
	}

	items := dedupe(collected)

	outcome := "success"
	switch {
	case pageErr != nil && pages == 0:
		outcome = "failed"
	case pageErr != nil:
		outcome = "partial"
	}
	p.hooks.FetchCompleted(category, outcome, len(items))
	log.Info("populate run finished", "outcome", outcome, "pages", pages, "items", len(items))

	if pageErr != nil && pages == 0 {
		return nil, fmt.Errorf("populate %s: first page failed: %w", category, pageErr)
	}
	return items, nil
}

// dedupe drops later duplicates by external identifier, preserving
// first-occurrence order.
func dedupe(items []core.CatalogItem) []core.CatalogItem {
	seen := make(map[string]struct{}, len(items))
	unique := make([]core.CatalogItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
