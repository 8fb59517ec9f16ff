// Package vgmstream ties together the streamfile, coding, and layout
// packages into the public Stream object and render loop described in
// spec sections 3, 4.7-4.10, 6 and 7.
package vgmstream

import "errors"

// Error taxonomy per spec section 7. FormatRejected is intentionally not a
// distinct error value: a parser signals "not mine" by returning a nil
// Stream and a nil error, per spec 4.5's "leave no side effects and return
// None on any rejection" — only the remaining kinds are real errors.
var (
	// ErrFormatMalformed: magic matched but header fields are inconsistent.
	ErrFormatMalformed = errors.New("vgmstream: malformed format")

	// ErrUnsupportedFeature: format recognized but needs a codec/variant
	// not compiled in.
	ErrUnsupportedFeature = errors.New("vgmstream: unsupported feature")

	// ErrIOShortRead: streamfile returned fewer bytes than a full parse
	// needed (post-probe, so it is not simply "try the next parser").
	ErrIOShortRead = errors.New("vgmstream: short read during parse")

	// ErrConfigInvalid: a Config option is out of range or incompatible
	// with the opened stream (e.g. force_sfmt with no matching converter).
	ErrConfigInvalid = errors.New("vgmstream: invalid configuration")

	// ErrStreamClosed: an operation was attempted on a freed or never-
	// opened Stream.
	ErrStreamClosed = errors.New("vgmstream: stream is closed")
)
