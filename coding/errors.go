package coding

import "errors"

// ErrUnsupportedCodec is returned by New for a Type with no registered
// factory — spec's "format known but variant uses a codec not compiled in"
// (UnsupportedFeature in the spec 7 error taxonomy).
var ErrUnsupportedCodec = errors.New("coding: unsupported codec")

// ErrDecodeTransient marks a codec hitting corrupt mid-stream data. Per
// spec 7, the render loop treats this as non-fatal: it logs and zero-fills
// the affected region rather than aborting playback.
var ErrDecodeTransient = errors.New("coding: transient decode error")
