// pkg/pnbst/errors.go
package pnbst

import "errors"

// Sentinel errors for programmer-error preconditions only (spec section
// 7: "Contract violations... are programmer errors"). The protocol's
// own internal retries (CAS loss, frozen node, handshake abort) never
// surface here; they are invisible to callers by design.
var (
	// ErrNilKey is returned when a caller passes a nil key. nil is
	// reserved for the tree's internal sentinels.
	ErrNilKey = errors.New("pnbst: key must not be nil")

	// ErrInvalidRange is returned by RangeScan when a > b.
	ErrInvalidRange = errors.New("pnbst: range scan requires a <= b")

	// ErrClosed is returned by operations issued after Close.
	ErrClosed = errors.New("pnbst: tree is closed")
)
