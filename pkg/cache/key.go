package cache

// CacheKey represents a unique identifier for a cached upstream response.
type CacheKey struct {
	// URL is the fully resolved upstream URL including the raw query string.
	URL string
}

// String returns the cache key string. The URL is used literally: two URLs
// that differ only in query parameter order are different keys.
//
// Example:
//
//	https://ocds-api.etenders.gov.za/api/OCDSReleases?PageNumber=1&PageSize=50
func (k CacheKey) String() string {
	return k.URL
}
