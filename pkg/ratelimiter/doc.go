// Package ratelimiter is a token bucket limiter with pluggable storage.
//
// A Bucket holds Capacity tokens and regains RefillRate tokens every
// RefillInterval. Each Allow takes one token; a negative Remaining in the
// Result means the call is over the limit.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//	perContact, err := ratelimiter.NewBucket(store, limits.Contact())
//	res, err := perContact.Allow(ctx, "otp:"+contact.Value)
//	if !res.Allowed() {
//	    // reject, retry after res.RetryAfter()
//	}
//
// Buckets sharing a store must use distinct key prefixes. KeyFunc and
// ClientIP build keys from HTTP requests.
package ratelimiter
