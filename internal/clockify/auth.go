package clockify

import "net/http"

const apiKeyHeader = "X-Api-Key"

// APIKey is a personal Clockify API key. It never prints in full.
type APIKey string

// Apply sets the authentication header on a request
func (k APIKey) Apply(req *http.Request) {
	req.Header.Set(apiKeyHeader, string(k))
}

// String returns the key masked for logs
func (k APIKey) String() string {
	if len(k) <= 4 {
		return "****"
	}
	return "****" + string(k[len(k)-4:])
}
