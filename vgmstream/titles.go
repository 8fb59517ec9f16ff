package vgmstream

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// TitleOptions controls GetTitle's output (spec 6's get_title "options").
type TitleOptions struct {
	// IncludeSubsong appends " #N" when the stream has more than one
	// subsong.
	IncludeSubsong bool
	// RemoveExtension strips the filename's extension before using it as
	// the title base.
	RemoveExtension bool
}

// GetTitle builds a human-readable title from the stream's StreamName (or
// MetaName when StreamName is empty) and subsong index (spec 6's
// get_title). Many older formats store titles as
// Shift-JIS; StreamName is decoded through that fallback if it doesn't
// parse as valid UTF-8, matching how the original tooling displays
// CJK-titled game rips without mojibake.
func (s *Stream) GetTitle(opts TitleOptions) string {
	base := s.StreamName
	if base == "" {
		base = s.MetaName
	}
	base = decodeTitleText(base)

	if opts.RemoveExtension {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if opts.IncludeSubsong && s.NumStreams > 1 {
		base = fmt.Sprintf("%s #%d", base, s.SubsongIndex)
	}
	return base
}

// decodeTitleText returns s unchanged if it is already valid UTF-8;
// otherwise it attempts a Shift-JIS decode and returns s unchanged if that
// fails or yields an empty string (never panics, never drops the string
// entirely).
func decodeTitleText(s string) string {
	if isValidUTF8(s) {
		return s
	}
	decoded, _, err := transform.String(japanese.ShiftJIS.NewDecoder(), s)
	if err != nil || decoded == "" {
		return s
	}
	return decoded
}

func isValidUTF8(s string) bool {
	for _, r := range s {
		if r == '�' {
			return false
		}
	}
	return true
}

// FormatDescribe returns a multi-line human description of the stream
// (spec 6's format_describe): codec name, layout, loop info.
func (s *Stream) FormatDescribe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "metadata from: %s\n", s.MetaName)
	fmt.Fprintf(&b, "codec: %s\n", s.CodecType)
	fmt.Fprintf(&b, "layout: %s\n", s.LayoutName)
	fmt.Fprintf(&b, "channels: %d\n", s.Channels)
	fmt.Fprintf(&b, "sample rate: %d Hz\n", s.SampleRate)
	fmt.Fprintf(&b, "stream samples: %d\n", s.NumSamples)
	fmt.Fprintf(&b, "play samples: %d\n", s.playSamples)
	if s.LoopFlag {
		fmt.Fprintf(&b, "loop: %d..%d (%d hits so far)\n", s.LoopStart, s.LoopEnd, s.loopHits)
	} else {
		b.WriteString("loop: no\n")
	}
	if s.NumStreams > 1 {
		fmt.Fprintf(&b, "subsong: %d/%d\n", s.SubsongIndex, s.NumStreams)
	}
	return b.String()
}
