// Package upstream holds the HTTP plumbing shared by the price API clients:
// a JSON GET helper resolved against a base URL, the [StatusError] returned
// for non-2xx responses, and a pacing transport that spaces requests with a
// token bucket.
//
// Requests classify upstream failures with [IsRateLimited]:
//
//	resp, err := client.GroupedDailyCryptoPrices(ctx, day)
//	if upstream.IsRateLimited(err) {
//	    return request.WaitAndRetry
//	}
package upstream
