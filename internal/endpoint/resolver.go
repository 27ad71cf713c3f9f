package endpoint

import (
	"fmt"
	"strings"
)

const (
	// DefaultDomain is the provider domain serving the field (production) hosts
	DefaultDomain = "aylanetworks.com"
	// DefaultHostSuffix is appended to the segment label to form the host name
	DefaultHostSuffix = "-field"
)

// Segment is a logical API domain of the provider
type Segment string

const (
	SegmentUser       Segment = "user"    // sign-in and account
	SegmentDeviceData Segment = "ads"     // device listing and properties
	SegmentMetrics    Segment = "metrics" // usage metrics
)

var knownSegments = map[Segment]struct{}{
	SegmentUser:       {},
	SegmentDeviceData: {},
	SegmentMetrics:    {},
}

// ConfigurationError reports an endpoint that cannot be resolved.
// It indicates a programming or configuration mistake, never a remote failure.
type ConfigurationError struct {
	Segment string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("endpoint: segment %q: %s", e.Segment, e.Reason)
}

// ParseSegment maps a segment name to a Segment.
// "device-data" is accepted as the logical name of the ads segment.
func ParseSegment(name string) (Segment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "user":
		return SegmentUser, nil
	case "ads", "device-data":
		return SegmentDeviceData, nil
	case "metrics":
		return SegmentMetrics, nil
	default:
		return "", &ConfigurationError{Segment: name, Reason: "not a recognized segment"}
	}
}

// Resolver maps segments to base URLs
type Resolver struct {
	Domain     string
	HostSuffix string
	// Overrides replaces the base URL of individual segments (e.g. a local proxy)
	Overrides map[Segment]string
}

// NewResolver creates a resolver for the default provider hosts
func NewResolver() *Resolver {
	return &Resolver{
		Domain:     DefaultDomain,
		HostSuffix: DefaultHostSuffix,
	}
}

// Resolve returns the base URL for a segment, without a trailing slash
func (r *Resolver) Resolve(segment Segment) (string, error) {
	if _, ok := knownSegments[segment]; !ok {
		return "", &ConfigurationError{Segment: string(segment), Reason: "not a recognized segment"}
	}

	if override, ok := r.Overrides[segment]; ok && override != "" {
		return strings.TrimRight(override, "/"), nil
	}

	domain := strings.Trim(r.Domain, ".")
	if domain == "" {
		return "", &ConfigurationError{Segment: string(segment), Reason: "provider domain is empty"}
	}

	return fmt.Sprintf("https://%s%s.%s", segment, r.HostSuffix, domain), nil
}
