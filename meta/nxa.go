package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&nxaParser{}, []string{"nxa"}, []string{"nxa"})
}

// nxaParser reads Entergram's "NXA1" Switch Opus container, ported
// field-for-field from original_source's nxa.c. The original delegates
// decode to FFmpeg's init_ffmpeg_switch_opus (fixed-size per-packet
// headers plus an encoder_delay "skip" to trim); this port instead uses
// coding.OpusDelegate with the same Switch packet framing switch_opus.go
// installs, since no pure-Go FFmpeg equivalent exists in this module.
type nxaParser struct{}

func (nxaParser) Name() string { return "NXA1 header" }

func (nxaParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}
	if !fields.IsID32BE(sf, 0x00, "NXA1") {
		return nil, nil
	}

	dataSize := int64(fields.U32LE(sf, 0x08)) - 0x30
	sampleRate := fields.U32LE(sf, 0x0c)
	channels := int(fields.U16LE(sf, 0x10))
	skip := int64(fields.U16LE(sf, 0x16))
	numSamples := int64(fields.U32LE(sf, 0x20))

	if channels <= 0 || channels > 8 || sampleRate == 0 || dataSize <= 0 {
		return nil, nil
	}

	res := &ParseResult{
		Channels:    channels,
		SampleRate:  int(sampleRate),
		NumSamples:  numSamples - skip,
		StartOffset: 0x30,
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
