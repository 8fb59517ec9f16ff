package meta

import (
	"github.com/vgmstream-go/vgmstream/streamfile"
)

func init() {
	// Position in the registry doesn't matter for correctness here: the
	// zstd frame magic never collides with another parser's own magic,
	// so every format-specific parser already refuses a zstd-compressed
	// file on its own before this one gets a chance to unwrap it.
	Register(&zstdWrapParser{}, nil, nil)
}

// zstdFrameMagic is the Zstandard frame format's own fixed magic number
// (RFC 8878 / zstd spec section 3.1.1), not anything specific to one game
// container. An earlier draft of this file targeted a specific "KTSS"
// Koei Tecmo container header, but no KTSS source was present anywhere in
// the retrieved pack to ground its field layout against, and no format
// in original_source turned out to actually wrap zstd at the container
// level either (several Switch-era titles are known to compress audio
// assets this way, but none of the retrieved sources demonstrate it).
// Rather than invent header fields for a format never actually seen,
// this parser instead does the one thing it can ground honestly: detect
// the standard zstd frame magic, fully decompress via streamfile.Zstd,
// and hand the result back into the registry so whatever real container
// format is inside (RIFF/DSP/Opus/etc.) gets identified normally.
type zstdWrapParser struct{}

func (zstdWrapParser) Name() string { return "zstd-wrapped container" }

func (zstdWrapParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if sf.Size() < 4 {
		return nil, nil
	}
	magic := make([]byte, 4)
	if n, _ := sf.Read(magic, 0); n < 4 {
		return nil, nil
	}
	if magic[0] != 0x28 || magic[1] != 0xb5 || magic[2] != 0x2f || magic[3] != 0xfd {
		return nil, nil
	}

	inner, err := streamfile.Zstd(sf, sf.Name())
	if err != nil {
		return nil, nil
	}

	// Probe the decompressed bytes against the whole registry. The zstd
	// magic check above already guarantees this doesn't re-match the
	// same parser on normal input (decompressed game audio containers
	// don't themselves start with a zstd frame).
	res, err := Probe(inner, subsongIndex)
	if err != nil || res == nil {
		return nil, nil
	}
	return res, nil
}
