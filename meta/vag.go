package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&vagParser{}, []string{"vag"}, []string{"vag"})
}

// vagParser recognizes Sony's "VAG" mono PS-ADPCM header (spec 8, test
// scenario 1): magic "VAGp"/"VAGi" at 0x00, big-endian fields, 0x30-byte
// header followed directly by PS-ADPCM frames.
type vagParser struct{}

func (vagParser) Name() string { return "VAG header" }

func (vagParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if !fields.IsID32BE(sf, 0, "VAGp") && !fields.IsID32BE(sf, 0, "VAGi") {
		return nil, nil
	}
	if subsongIndex != 1 {
		return nil, nil // VAG is never a multi-subsong container
	}

	const headerSize = 0x30
	numSamplesRaw := fields.U32BE(sf, 0x0c)
	sampleRate := fields.U32BE(sf, 0x10)
	if sampleRate == 0 || sampleRate > 192000 {
		return nil, nil
	}

	startOffset := int64(headerSize)
	dataSize := sf.Size() - startOffset
	numSamples := coding.PSBytesToSamples(dataSize, 1)
	if numSamplesRaw > 0 {
		// The header's own sample count (in bytes, classic VAG convention)
		// takes priority when present and plausible.
		if hdrSamples := coding.PSBytesToSamples(int64(numSamplesRaw), 1); hdrSamples > 0 && hdrSamples <= numSamples+28 {
			numSamples = hdrSamples
		}
	}

	loopStart, loopEnd, loopFlag := PSFindLoopOffsets(sf, startOffset, dataSize, 1, 0)

	return &ParseResult{
		Channels:    1,
		SampleRate:  int(sampleRate),
		NumSamples:  numSamples,
		LoopFlag:    loopFlag,
		LoopStart:   loopStart,
		LoopEnd:     loopEnd,
		StartOffset: startOffset,
		CodecType:   coding.PSADPCM,
		Layout:      layout.None{},
		StreamName:  fields.ReadString(sf, 0x14, 16),
	}, nil
}
