// Package entity defines the entities and errors used in the application.
// It includes the Mapping struct, which ties a serial and its short code to
// a destination URL, the tagged Resolution outcome of a lookup, and the
// error kinds shared across layers.
package entity

import "errors"

var (
	// ErrInvalidArguments is returned when a caller supplies a missing or malformed URL or code.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrURLNotFound is returned when no mapping exists for a serial.
	ErrURLNotFound = errors.New("url not found")
	// ErrStore is returned when the key-value backend fails to list, get or put.
	ErrStore = errors.New("store failure")
)

// Mapping represents a shortened URL.
type Mapping struct {
	Serial uint64 // Serial is the monotonically assigned identifier of the mapping.
	Code   string // Code is the public base-62 rendering of Serial.
	URL    string // URL is the destination the code resolves to.
}

// ResolutionKind tells which outcome a lookup produced.
type ResolutionKind int

const (
	// ResolutionInvalid means the code could not be decoded into a serial.
	ResolutionInvalid ResolutionKind = iota
	// ResolutionNotFound means the code is valid but no mapping exists for it.
	ResolutionNotFound
	// ResolutionRedirect means the code resolved to a URL.
	ResolutionRedirect
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionInvalid:
		return "invalid"
	case ResolutionNotFound:
		return "not_found"
	case ResolutionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Resolution is the single outcome of resolving a short code.
// URL is set only for ResolutionRedirect, Reason only for ResolutionInvalid.
type Resolution struct {
	Kind   ResolutionKind
	URL    string
	Reason string
}

func Redirect(url string) Resolution {
	return Resolution{Kind: ResolutionRedirect, URL: url}
}

func NotFound() Resolution {
	return Resolution{Kind: ResolutionNotFound}
}

func Invalid(reason string) Resolution {
	return Resolution{Kind: ResolutionInvalid, Reason: reason}
}
