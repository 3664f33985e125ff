package walker

import "strings"

// IsMissing reports whether the url the browser ended up on after
// requesting a job page means the job does not exist. The site redirects
// unknown IDs to its landing page or feed instead of returning 404.
func IsMissing(finalURL, baseURL string) bool {
	base := strings.TrimSuffix(baseURL, "/")
	switch finalURL {
	case base, base + "/", base + "/feed":
		return true
	}
	return strings.HasSuffix(finalURL, "/feed") ||
		strings.HasSuffix(finalURL, "/") ||
		strings.HasSuffix(finalURL, "/jobs") ||
		!strings.Contains(finalURL, "/jobs/")
}
