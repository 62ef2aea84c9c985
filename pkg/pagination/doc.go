// Package pagination walks offset/limit paginated endpoints of the
// statistics service.
//
// The service reports the total number of matching records in every page
// envelope. FetchAll requests pages at increasing offsets until the
// accumulated offset reaches that total, or until a page comes back empty
// when the total is unknown. A failed page ends the walk early and the
// records gathered so far are returned flagged as incomplete.
//
// Example usage:
//
//	res := pagination.FetchAll(ctx, pagination.Options{Limit: 100, Resource: "laps"},
//		func(ctx context.Context, offset, limit int) (pagination.Page[ergast.LapTiming], error) {
//			return src.LapsPage(ctx, 2021, 5, offset, limit)
//		})
//	if !res.Complete {
//		log.Warn().Err(res.Err).Int("pages", res.Pages).Msg("partial lap data")
//	}
//
// Pages are fetched one after another and the context is checked before
// every page. Request pacing belongs to the transport: a ratelimit.Limiter
// stored in the context is honoured by the client for every page.
package pagination
