package cache

// VisibleReportsKey is the cache key for one user's visible-report listing.
// Bump the version segment when the cached shape changes.
func VisibleReportsKey(userID string) string {
	return "reports:visible:v1:user=" + userID
}
