package pagination

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// DefaultLimit is the page size used when Options.Limit is not set.
const DefaultLimit = 100

// ErrMaxPages ends a walk that reached Options.MaxPages before the last page.
var ErrMaxPages = errors.New("page cap reached")

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_pages_fetched_total",
		Help: "Total number of pages fetched by resource",
	}, []string{"resource"})

	partialFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_partial_fetches_total",
		Help: "Total number of paginated fetches that ended early by resource",
	}, []string{"resource"})
)

// Page is one page of records together with the server-reported total.
// TotalKnown is false when the envelope carried no usable total.
type Page[T any] struct {
	Items      []T
	Total      int
	TotalKnown bool
}

// PageFunc fetches the page starting at offset.
type PageFunc[T any] func(ctx context.Context, offset, limit int) (Page[T], error)

// Options configures a paginated fetch.
type Options struct {
	// Limit is the page size
	Limit int

	// Resource labels logs and metrics
	Resource string

	// MaxPages ends the walk as partial with ErrMaxPages once this many
	// pages were fetched and more remain; 0 means no cap
	MaxPages int
}

// Result is the outcome of FetchAll. Items are in source order.
// Complete is false when a page failed, the context was cancelled or the
// page cap was hit; Err then holds the cause.
type Result[T any] struct {
	Items    []T
	Pages    int
	Complete bool
	Err      error
}

// Partial reports whether the fetch ended before the last page.
func (r Result[T]) Partial() bool {
	return !r.Complete
}

// FetchAll requests pages at increasing offsets and concatenates them.
func FetchAll[T any](ctx context.Context, opts Options, fn PageFunc[T]) Result[T] {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	resource := opts.Resource
	if resource == "" {
		resource = "unknown"
	}

	start := time.Now()
	var res Result[T]

	partial := func(err error) Result[T] {
		res.Err = err
		partialFetchesTotal.WithLabelValues(resource).Inc()
		log.Warn().
			Err(err).
			Str("resource", resource).
			Int("pages", res.Pages).
			Int("items", len(res.Items)).
			Msg("Paginated fetch ended early - returning partial results")
		return res
	}

	for offset := 0; ; offset += limit {
		if err := ctx.Err(); err != nil {
			return partial(err)
		}
		if opts.MaxPages > 0 && res.Pages >= opts.MaxPages {
			return partial(ErrMaxPages)
		}

		page, err := fn(ctx, offset, limit)
		if err != nil {
			return partial(err)
		}
		res.Pages++
		pagesFetchedTotal.WithLabelValues(resource).Inc()

		log.Debug().
			Str("resource", resource).
			Int("offset", offset).
			Int("items", len(page.Items)).
			Int("total", page.Total).
			Bool("total_known", page.TotalKnown).
			Msg("Page fetched")

		if len(page.Items) == 0 {
			break
		}
		res.Items = append(res.Items, page.Items...)

		if page.TotalKnown && offset+limit >= page.Total {
			break
		}
	}

	res.Complete = true
	log.Debug().
		Str("resource", resource).
		Int("pages", res.Pages).
		Int("items", len(res.Items)).
		Dur("duration", time.Since(start)).
		Msg("Paginated fetch complete")
	return res
}
