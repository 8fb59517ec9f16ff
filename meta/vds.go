package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&vdsParser{}, []string{"vds"}, []string{"vds"})
}

// vdsParser recognizes an interleaved multichannel PS-ADPCM container
// (spec 8, test scenario 2): magic "VDS " at 0x00, little-endian header
// fields, fixed data start at 0x800.
//
//	0x00 "VDS "      0x04 u32 interleave   0x08 u32 channels
//	0x0c u32 sample_rate   0x10 u32 num_samples (per channel)
type vdsParser struct{}

func (vdsParser) Name() string { return "VDS header" }

func (vdsParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if !fields.IsID32BE(sf, 0, "VDS ") {
		return nil, nil
	}
	if subsongIndex != 1 {
		return nil, nil
	}

	interleave := int64(fields.U32LE(sf, 0x04))
	channels := int(fields.U32LE(sf, 0x08))
	sampleRate := fields.U32LE(sf, 0x0c)
	numSamplesHdr := fields.U32LE(sf, 0x10)

	if channels <= 0 || channels > 8 || interleave <= 0 || sampleRate == 0 || sampleRate > 192000 {
		return nil, nil
	}

	const startOffset = 0x800
	perChannelBytes := (sf.Size() - startOffset) / int64(channels)
	numSamples := coding.PSBytesToSamples(perChannelBytes, 1)
	if numSamplesHdr > 0 {
		numSamples = int64(numSamplesHdr)
	}

	return &ParseResult{
		Channels:            channels,
		SampleRate:          int(sampleRate),
		NumSamples:          numSamples,
		StartOffset:         startOffset,
		CodecType:           coding.PSADPCM,
		Layout:              layout.Interleave{BlockSize: interleave, Channels: channels},
		InterleaveBlockSize: interleave,
	}, nil
}
