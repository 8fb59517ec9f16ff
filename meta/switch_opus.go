package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&switchOpusParser{}, []string{"nxopus"}, []string{"nxopus"})
}

// switchOpusParser reads Nihon Falcom's "nxof" NXOpus header (spec 4.6's
// Switch-Opus family), ported field-for-field from original_source's
// nxof.c: little-endian "nxof" magic, channels/sample_rate/start_offset/
// data_size/num_samples/loop_start/loop_end all at fixed offsets.
// Per-packet framing (size-prefixed raw Opus data) follows the
// well-established Switch-Opus packet shape those same headers wrap;
// see coding's switchOpusFraming doc comment for what was and wasn't
// directly grounded in the retrieved source pack.
type switchOpusParser struct{}

func (switchOpusParser) Name() string { return "Switch NXOpus header" }

func (switchOpusParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}
	if !fields.IsID32BE(sf, 0, "nxof") {
		return nil, nil
	}

	channels := int(fields.U8(sf, 0x05))
	sampleRate := fields.U32LE(sf, 0x08)
	startOffset := int64(fields.U32LE(sf, 0x18))
	numSamples := int64(fields.U32LE(sf, 0x20))
	loopStart := int64(fields.U32LE(sf, 0x30))
	loopEnd := int64(fields.U32LE(sf, 0x34))

	if channels <= 0 || channels > 8 || sampleRate == 0 || sampleRate > 192000 {
		return nil, nil
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
