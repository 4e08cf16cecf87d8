// Package observability provides metrics hooks for the cache and fetch
// subsystems. The Prometheus implementation is optional; callers that run
// without metrics get NopHooks.
package observability

// Hooks receives counters from the catalog service and fetch pipeline.
// Implementations must be safe for concurrent use.
type Hooks interface {
	// CacheHit records a catalog read served from a populated entry.
	CacheHit(category string)

	// CacheMiss records a catalog read against an absent entry.
	CacheMiss(category string)

	// FetchStarted records the start of one populate run.
	FetchStarted(category string)

	// FetchCompleted records the end of one populate run with its outcome
	// ("success", "partial" or "failed") and the number of items collected.
	FetchCompleted(category, outcome string, items int)

	// UpstreamError records a metadata source failure at the given stage
	// ("discover" or "enrich").
	UpstreamError(stage string)
}

// NopHooks is a Hooks implementation that discards everything.
type NopHooks struct{}

func (NopHooks) CacheHit(string)                    {}
func (NopHooks) CacheMiss(string)                   {}
func (NopHooks) FetchStarted(string)                {}
func (NopHooks) FetchCompleted(string, string, int) {}
func (NopHooks) UpstreamError(string)               {}
