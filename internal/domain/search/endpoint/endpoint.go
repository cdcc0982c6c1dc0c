package endpoint

import "fmt"

// Endpoint is a ReliefWeb search resource.
type Endpoint string

// Supported endpoints.
const (
	Reports   Endpoint = "reports"
	Disasters Endpoint = "disasters"
)

// IsValid checks if the endpoint is one of the supported values.
func (e Endpoint) IsValid() bool {
	return e == Reports || e == Disasters
}

// Parse converts a raw path segment into an Endpoint.
func Parse(s string) (Endpoint, error) {
	e := Endpoint(s)
	if !e.IsValid() {
		return "", fmt.Errorf("unknown endpoint %q", s)
	}
	return e, nil
}

// DefaultLimit returns the page size used when none is requested.
func (e Endpoint) DefaultLimit() int {
	if e == Disasters {
		return 20
	}
	return 5
}
