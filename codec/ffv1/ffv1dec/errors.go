/*
DESCRIPTION
  errors.go provides the typed errors surfaced across the decode boundary.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ffv1dec provides a bit-exact FFV1 version-3 decoder core: parsing
// of the container-provided configuration record, slice-parallel bitstream
// decoding via the range and Golomb-Rice entropy coders, and the inverse
// JPEG2000-RCT color transform, producing raw planar pixel data.
package ffv1dec

import "fmt"

// Kind identifies the broad category of a decode failure.
type Kind int

// Error kinds, per the decoder's error handling design.
const (
	// InvalidInputData covers malformed extradata length, impossible
	// dimensions, and CRC mismatch on a slice payload.
	InvalidInputData Kind = iota
	// InvalidConfiguration covers any configuration-record validation
	// failure. A configuration-record parse failure is fatal: the decoder
	// cannot be constructed.
	InvalidConfiguration
	// FrameError covers failure while scanning footers or reading the
	// keyframe bit.
	FrameError
	// SliceError covers slice count mismatch across frames, non-zero
	// error_status, or out-of-range footer math.
	SliceError
)

func (k Kind) String() string {
	switch k {
	case InvalidInputData:
		return "invalid input data"
	case InvalidConfiguration:
		return "invalid configuration"
	case FrameError:
		return "frame error"
	case SliceError:
		return "slice error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned across the decoder's public boundary.
// Every decode-path failure is one of these four kinds; there is no
// partial-success or interactive-recovery error surface (see spec section 7,
// Error Handling Design).
type Error struct {
	Kind   Kind
	Reason string
	Err    error // wrapped cause, if any; may be nil.
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// newErr constructs an *Error of the given kind.
func newErr(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// wrapErr constructs an *Error of the given kind wrapping a lower-level
// cause.
func wrapErr(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}
