package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&lopuFbParser{}, []string{"lopus"}, []string{"lopus"})
}

// lopuFbParser reads French-Bread's "LOPU" Switch Opus container (Melty
// Blood: Type Lumina), ported field-for-field from original_source's
// lopu_fb.c. Its num_samples bookkeeping is unusually specific: the raw
// header count must have encoder delay subtracted, and then be clamped up
// to loop_end if it still falls short (lopu_fb.c's own comment: some
// titles' stored count is slightly low but still a valid loop end).
type lopuFbParser struct{}

func (lopuFbParser) Name() string { return "LOPU header" }

func (lopuFbParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}
	if !fields.IsID32BE(sf, 0x00, "LOPU") {
		return nil, nil
	}

	startOffset := int64(fields.U32LE(sf, 0x04))
	sampleRate := fields.S32LE(sf, 0x08)
	channels := int(fields.S16LE(sf, 0x0c))
	numSamples := int64(fields.S32LE(sf, 0x14))
	loopStart := int64(fields.S32LE(sf, 0x18))
	loopEnd := int64(fields.S32LE(sf, 0x1c)) + 1
	skip := int64(fields.S16LE(sf, 0x24))
	dataSize := int64(fields.U32LE(sf, 0x28))

	if channels <= 0 || channels > 8 || sampleRate <= 0 || dataSize <= 0 {
		return nil, nil
	}

	numSamples -= skip
	if numSamples < loopEnd {
		numSamples = loopEnd
	}

	res := &ParseResult{
		Channels:    channels,
		SampleRate:  int(sampleRate),
		NumSamples:  numSamples,
		LoopFlag:    loopEnd > 0,
		LoopStart:   loopStart,
		LoopEnd:     loopEnd,
		StartOffset: startOffset,
		CodecType:   coding.OpusDelegate,
		Layout:      layout.None{},
	}
	res.PostOpen = func(chans []*coding.ChannelState) error {
		for _, ch := range chans {
			ch.Extra = coding.NewSwitchOpusFraming()
		}
		return nil
	}
	return res, nil
}
