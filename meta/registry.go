// Package meta implements the format parsers (spec 4.5) and their ordered
// registry (spec 4.6). Each parser inspects a streamfile.Streamfile and
// either declines (returns a nil *ParseResult and nil error — "not my
// format", spec 7's FormatRejected) or returns enough information for
// vgmstream.CreateStream to build a Stream: channel/rate/sample counts,
// loop points, resolved codec type, and a ready-to-use layout.Layout.
//
// This package intentionally has no dependency on the vgmstream package
// itself (only coding/layout/streamfile) so vgmstream can depend on meta
// without a cycle; vgmstream.CreateStream is the only place a ParseResult
// becomes a Stream.
package meta

import (
	"fmt"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

// ParseResult is everything a parser learned about one subsong.
type ParseResult struct {
	Channels      int
	SampleRate    int
	NumSamples    int64
	LoopFlag      bool
	LoopStart     int64
	LoopEnd       int64
	StartOffset   int64
	ChannelLayout uint32

	CodecType           coding.Type
	Layout              layout.Layout
	InterleaveBlockSize int64 // only meaningful when Layout is layout.Interleave

	MetaName   string // which parser recognized the file, e.g. "VAG header"
	StreamName string // an embedded/derived display name, may be ""

	SubsongIndex int // 1-based, already resolved from 0
	NumStreams   int

	PlayForeverCapable bool

	// PostOpen runs once after vgmstream.Stream has opened per-channel
	// streamfiles but before the codec's first Decode, for parser-specific
	// per-channel setup that needs a live SF handle (DSP coefficient
	// tables, MS-ADPCM block size, HCA cipher key). nil if the codec needs
	// no such setup.
	PostOpen func(chans []*coding.ChannelState) error
}

// Parser implements one container/header format.
type Parser interface {
	// Name identifies the parser for format_describe/logging.
	Name() string

	// ProbeAndOpen inspects sf and either returns a populated ParseResult
	// or (nil, nil) to mean "not my format" (spec 4.5 point 1: reads a
	// magic/signature and returns None if it doesn't match). subsongIndex
	// is already resolved to its 1-based value (0 -> 1) by Probe.
	//
	// Per spec 4.5's failure policy, ProbeAndOpen must leave no side
	// effects and must only return a non-nil error for catastrophic
	// conditions (OOM-class); any rejection, including malformed fields
	// discovered after the magic matched, should still return (nil, nil)
	// unless the magic match makes the file unambiguously this format, in
	// which case returning an error is appropriate (spec 7:
	// FormatMalformed is "surfaced", not silently skipped).
	ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error)
}

type registration struct {
	parser     Parser
	exts       []string
	commonExts []string
}

var registry []registration //nolint:gochecknoglobals // ordered registry, read-only after init

// Register adds a parser to the end of the registry (spec 4.6: "order
// matters: more specific signatures ... come before more permissive
// ones"), so call order in each format's init() must follow that rule.
// exts/commonExts feed Extensions/CommonExtensions and IsValid; either may
// be nil for header-only formats with no fixed extension.
func Register(p Parser, exts, commonExts []string) {
	registry = append(registry, registration{parser: p, exts: exts, commonExts: commonExts})
}

// Probe runs the registry in order and returns the first parser's non-nil
// result (spec 4.6 point 1-2). stream_index 0 is normalized to 1 before
// being passed to parsers (spec 6's subsong convention).
func Probe(sf streamfile.Streamfile, streamIndex int) (*ParseResult, error) {
	if streamIndex <= 0 {
		streamIndex = 1
	}
	for _, reg := range registry {
		res, err := reg.parser.ProbeAndOpen(sf, streamIndex)
		if err != nil {
			return nil, fmt.Errorf("meta: %s: %w", reg.parser.Name(), err)
		}
		if res != nil {
			if res.MetaName == "" {
				res.MetaName = reg.parser.Name()
			}
			if res.SubsongIndex == 0 {
				res.SubsongIndex = streamIndex
			}
			if res.NumStreams == 0 {
				res.NumStreams = 1
			}
			return res, nil
		}
	}
	return nil, nil
}

// Extensions returns every extension any registered parser claims
// (spec 6's get_extensions).
func Extensions() []string {
	seen := map[string]bool{}
	var out []string
	for _, reg := range registry {
		for _, e := range reg.exts {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// CommonExtensions returns the subset of Extensions() flagged as common,
// i.e. unambiguous enough to auto-associate in a media player (spec 6's
// get_common_extensions).
func CommonExtensions() []string {
	seen := map[string]bool{}
	var out []string
	for _, reg := range registry {
		for _, e := range reg.commonExts {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}
