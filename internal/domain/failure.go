package domain

import "fmt"

// FailureKind classifies why a gateway call failed.
type FailureKind string

const (
	FailureNetwork      FailureKind = "network"
	FailureUnauthorized FailureKind = "unauthorized"
	FailureBlocked      FailureKind = "blocked-by-safety-filter"
	FailureMalformed    FailureKind = "malformed-response"
)

// GatewayFailure is the only error type the model gateway returns. It is
// caught at the engine boundary and converted into a visible assistant
// message; it never propagates to the presentation layer.
type GatewayFailure struct {
	Kind FailureKind
	Op   string // "chat" or "synthesize-image"
	Err  error  // underlying cause, may be nil
}

func (f *GatewayFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("gateway %s: %s: %v", f.Op, f.Kind, f.Err)
	}
	return fmt.Sprintf("gateway %s: %s", f.Op, f.Kind)
}

func (f *GatewayFailure) Unwrap() error { return f.Err }

// NewGatewayFailure wraps err with a classification.
func NewGatewayFailure(kind FailureKind, op string, err error) *GatewayFailure {
	return &GatewayFailure{Kind: kind, Op: op, Err: err}
}
