package domain

import "fmt"

// FailureKind tags how a provider call failed at the transport boundary.
type FailureKind string

const (
	FailureHTTPStatus        FailureKind = "http_status"
	FailureNetwork           FailureKind = "network"
	FailureMalformedResponse FailureKind = "malformed_response"
)

type ProviderFailure struct {
	Kind       FailureKind
	StatusCode int
	// Detail is the provider's own error message, when the body carried one.
	Detail string
	Err    error
}

func HTTPStatusFailure(status int, detail string) *ProviderFailure {
	return &ProviderFailure{Kind: FailureHTTPStatus, StatusCode: status, Detail: detail}
}

func NetworkFailure(err error) *ProviderFailure {
	return &ProviderFailure{Kind: FailureNetwork, Err: err}
}

func MalformedResponseFailure(err error) *ProviderFailure {
	return &ProviderFailure{Kind: FailureMalformedResponse, Err: err}
}

func (f *ProviderFailure) Error() string {
	switch f.Kind {
	case FailureHTTPStatus:
		if f.Detail == "" {
			return fmt.Sprintf("provider returned status %d", f.StatusCode)
		}
		return fmt.Sprintf("provider returned status %d: %s", f.StatusCode, f.Detail)
	case FailureNetwork:
		return fmt.Sprintf("provider unreachable: %v", f.Err)
	case FailureMalformedResponse:
		return fmt.Sprintf("decode provider response: %v", f.Err)
	default:
		return fmt.Sprintf("provider failure %q: %v", f.Kind, f.Err)
	}
}

func (f *ProviderFailure) Unwrap() error {
	return f.Err
}
