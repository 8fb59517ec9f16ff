package vgmstream

import (
	"fmt"
	"strings"

	"github.com/vgmstream-go/vgmstream/archive"
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/meta"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

// version is this implementation's self-reported library version (spec
// section 6's "library_version" string), in the absence of any source
// git tag to derive one from.
const version = "0.1.0"

// Version returns the library's self-reported version string.
func Version() string { return version }

// CreateStream is the single place a meta.ParseResult becomes a *Stream
// (spec 4.5/4.7's "create_stream(sf, stream_index, config)"): it probes sf
// against the meta registry, allocates a Stream sized to the winning
// parser's channel count, opens per-channel streamfiles through the
// resolved layout and codec, runs the parser's PostOpen hook, and applies
// cfg. A nil cfg applies a zero-value Config (no overrides).
func CreateStream(sf streamfile.Streamfile, streamIndex int, cfg *Config) (*Stream, error) {
	res, err := meta.Probe(sf, streamIndex)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: no parser recognized %q", ErrFormatMalformed, sf.Name())
	}

	cdc, err := coding.New(res.CodecType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFeature, err)
	}

	s := Allocate(res.Channels, res.LoopFlag)
	s.SampleRate = res.SampleRate
	s.NumSamples = res.NumSamples
	s.LoopStart = res.LoopStart
	s.LoopEnd = res.LoopEnd
	s.ChannelLayout = res.ChannelLayout
	s.CodecType = res.CodecType
	s.LayoutName = layoutName(res.Layout)
	s.MetaName = res.MetaName
	s.StreamName = res.StreamName
	s.SubsongIndex = res.SubsongIndex
	s.NumStreams = res.NumStreams
	s.PlayForeverCapable = res.PlayForeverCapable

	if err := s.OpenStream(sf, res.StartOffset, res.Layout, cdc, res.InterleaveBlockSize); err != nil {
		return nil, err
	}

	if res.PostOpen != nil {
		if err := res.PostOpen(s.chans()); err != nil {
			s.Free()
			return nil, fmt.Errorf("%w: post-open setup: %w", ErrFormatMalformed, err)
		}
	}

	applied := Config{}
	if cfg != nil {
		applied = *cfg
	}
	if err := s.ApplyConfig(applied); err != nil {
		s.Free()
		return nil, err
	}
	return s, nil
}

// chans exposes Stream's private per-channel slice to CreateStream, kept
// unexported everywhere else so callers can't mutate decoder state
// directly (spec 4.7's PostOpen hook is the one sanctioned exception).
func (s *Stream) chans() []*coding.ChannelState { return s.ch }

func layoutName(lay layout.Layout) string {
	switch lay.(type) {
	case layout.Interleave:
		return "interleave"
	case *layout.Blocked:
		return "blocked"
	default:
		return "none"
	}
}

// IsValid reports whether filename's extension is recognized by the meta
// registry (spec 6's "is_valid_extension", a name/extension-only check
// with no file content involved — callers needing a content-backed check
// should call CreateStream and inspect the error instead).
func IsValid(filename string, onlyCommon bool) bool {
	ext := strings.TrimPrefix(strings.ToLower(extOf(filename)), ".")
	if ext == "" {
		return false
	}
	list := meta.Extensions()
	if onlyCommon {
		list = meta.CommonExtensions()
	}
	for _, e := range list {
		if e == ext {
			return true
		}
	}
	return false
}

// OpenPath opens path for decoding, transparently pulling a member out of a
// .zip/.7z/.rar archive when path names one (spec §4.1's archive-wrapped
// streamfile case). "bank.zip/track01.vag" opens that member directly,
// MiSTer-style; a bare "bank.zip" auto-detects its one recognized audio
// member. A path with no archive extension anywhere in it is opened
// straight off disk via streamfile.OpenFile.
func OpenPath(path string) (streamfile.Streamfile, error) {
	if !archive.IsArchivePath(path) {
		return streamfile.OpenFile(path)
	}

	archivePath, internalPath := path, ""
	parsed, err := archive.ParsePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormatMalformed, path, err)
	}
	if parsed != nil {
		archivePath, internalPath = parsed.ArchivePath, parsed.InternalPath
	}

	if internalPath == "" {
		internalPath, err = detectSoleMember(archivePath)
		if err != nil {
			return nil, err
		}
	}

	data, err := archive.ReadMember(archivePath, internalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormatMalformed, err)
	}
	return streamfile.NewMemory(internalPath, data), nil
}

// ListArchiveMembers returns every member of the archive at archivePath
// recognized by GetExtensions, letting a caller (the CLI's archive-browsing
// path) enumerate candidate subsongs before picking one with OpenPath.
func ListArchiveMembers(archivePath string) ([]string, error) {
	arc, err := archive.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrFormatMalformed, archivePath, err)
	}
	defer func() { _ = arc.Close() }()

	members, err := archive.ListAudioFiles(arc, meta.Extensions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormatMalformed, err)
	}
	return members, nil
}

// detectSoleMember picks the one recognized audio member in archivePath,
// failing if there are zero or more than one: auto-detection (no member
// named in the path) only makes sense for a single-track distribution.
func detectSoleMember(archivePath string) (string, error) {
	arc, err := archive.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrFormatMalformed, archivePath, err)
	}
	defer func() { _ = arc.Close() }()

	members, err := archive.ListAudioFiles(arc, meta.Extensions())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormatMalformed, err)
	}
	switch len(members) {
	case 0:
		return "", fmt.Errorf("%w: %s: no recognized audio member", ErrFormatMalformed, archivePath)
	case 1:
		return members[0], nil
	default:
		return "", fmt.Errorf("%w: %s: %d recognized audio members, name one explicitly (archive.ext/member)",
			ErrFormatMalformed, archivePath, len(members))
	}
}

// GetExtensions returns every extension any registered format parser
// claims (spec 6's get_extensions).
func GetExtensions() []string { return meta.Extensions() }

// GetCommonExtensions returns the subset of GetExtensions considered
// unambiguous enough to auto-associate in a media player (spec 6's
// get_common_extensions).
func GetCommonExtensions() []string { return meta.CommonExtensions() }

func extOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}
