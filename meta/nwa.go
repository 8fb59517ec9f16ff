package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&nwaParser{}, []string{"nwa"}, []string{"nwa"})
}

// nwaParser recognizes Narcissu/AJ's "NWA" container (spec 8, test
// scenario 6). No magic number; the fixed 0x2c-byte header carries
// channels/bps/freq/complevel plus the block count and per-block byte
// sizes, followed by an offset index table (one s32le per block). Layout
// and validation ported from nwa_decoder.c's nwalib_open(); that function
// never accepts complevel < 0 ("PCM not handled"), so this parser doesn't
// either.
//
//	0x00 s16 channels    0x02 s16 bps         0x04 s32 freq
//	0x08 s32 complevel   0x0c s32 dummy       0x10 s32 blocks
//	0x14 s32 datasize    0x18 s32 compdatasize
//	0x1c s32 samplecount 0x20 s32 blocksize   0x24 s32 restsize
//	0x28 s32 dummy2
//	0x2c: offset table, blocks * s32le byte offsets (relative to 0x2c)
type nwaParser struct{}

func (nwaParser) Name() string { return "NWA header" }

func (nwaParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}

	channels := int(fields.S16LE(sf, 0x00))
	bps := int32(fields.S16LE(sf, 0x02))
	freq := fields.S32LE(sf, 0x04)
	complevel := fields.S32LE(sf, 0x08)
	blocks := fields.S32LE(sf, 0x10)
	datasize := fields.S32LE(sf, 0x14)
	compDataSize := fields.S32LE(sf, 0x18)
	sampleCount := fields.S32LE(sf, 0x1c)
	blockSize := fields.S32LE(sf, 0x20)
	restSize := fields.S32LE(sf, 0x24)

	if channels != 1 && channels != 2 {
		return nil, nil
	}
	if bps != 8 && bps != 16 {
		return nil, nil
	}
	if complevel < 0 || complevel > 5 {
		return nil, nil
	}
	if blocks <= 0 || blocks > 1000000 {
		return nil, nil
	}
	if freq <= 0 || freq > 192000 {
		return nil, nil
	}
	if sampleCount <= 0 {
		return nil, nil
	}
	if datasize != sampleCount*(bps/8) {
		return nil, nil
	}
	if sampleCount != (blocks-1)*blockSize+restSize {
		return nil, nil
	}

	const headerSize = 0x2c
	if sf.Size() < headerSize+int64(blocks)*4 {
		return nil, nil
	}

	offsets := make([]int64, blocks)
	for i := int32(0); i < blocks; i++ {
		offsets[i] = headerSize + int64(fields.S32LE(sf, headerSize+int64(i)*4))
	}
	if offsets[blocks-1] >= headerSize+int64(compDataSize) {
		return nil, nil
	}

	res := &ParseResult{
		Channels:    channels,
		SampleRate:  int(freq),
		NumSamples:  int64(sampleCount) / int64(channels),
		StartOffset: headerSize,
		CodecType:   coding.NWADPCM,
		Layout:      layout.None{},
	}
	res.PostOpen = func(chans []*coding.ChannelState) error {
		extra := coding.NewNWAExtra(channels, bps, complevel, blocks, blockSize, restSize, compDataSize, offsets)
		for _, ch := range chans {
			ch.Extra = extra
		}
		return nil
	}
	return res, nil
}
