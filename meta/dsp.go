package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&dspParser{}, []string{"dsp"}, []string{"dsp"})
}

// dspHeaderSize is the standard Nintendo GC/Wii per-channel DSP header:
// sample counts, loop points, and a 16-entry coefficient table, all
// big-endian (spec 8, test scenario 3).
const dspHeaderSize = 0x60

// dspParser recognizes the standalone GC/Wii ".dsp" ADPCM header. A file
// is either a single mono channel, or two headers back to back (the
// common "dual dsp" packing some GC tools emit for stereo) when the
// second header also looks plausible.
type dspParser struct{}

func (dspParser) Name() string { return "DSP header" }

func (dspParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}
	if !looksLikeDSPHeader(sf, 0) {
		return nil, nil
	}

	numSamples := int64(fields.U32BE(sf, 0x00))
	sampleRate := fields.U32BE(sf, 0x08)
	loopFlag := fields.U16BE(sf, 0x0c) != 0
	loopStartNibble := int64(fields.U32BE(sf, 0x10))
	loopEndNibble := int64(fields.U32BE(sf, 0x14))

	channels := 1
	channelDataSize := (int64(fields.U32BE(sf, 0x04)) + 1) / 2 // nibbles -> bytes
	secondHeaderOffset := dspHeaderSize + channelDataSize
	if looksLikeDSPHeader(sf, secondHeaderOffset) {
		channels = 2
	}

	res := &ParseResult{
		Channels:    channels,
		SampleRate:  int(sampleRate),
		NumSamples:  numSamples,
		LoopFlag:    loopFlag,
		LoopStart:   coding.DSPNibblesToSamples(loopStartNibble),
		LoopEnd:     coding.DSPNibblesToSamples(loopEndNibble),
		StartOffset: 0,
		CodecType:   coding.NGCDSP,
	}

	if channels == 1 {
		res.Layout = layout.None{}
		res.PostOpen = func(chans []*coding.ChannelState) error {
			loadDSPCoefsAt(chans[0], 0)
			return nil
		}
	} else {
		// Dual-header packing: two independent [header][data] runs back
		// to back; each channel's own header (including its own coef
		// table) sits right before its data.
		dl := dualDSPLayout{channelDataSize: channelDataSize}
		res.Layout = dl
		res.PostOpen = func(chans []*coding.ChannelState) error {
			for i, ch := range chans {
				loadDSPCoefsAt(ch, dl.channelStart(i)-dspHeaderSize)
			}
			return nil
		}
	}
	return res, nil
}

// loadDSPCoefsAt reads the 16-entry big-endian coefficient table from the
// DSP header at headerOffset (relative to ch's own streamfile) into
// ch.Coefs, as coding.ngcDspCodec expects at decode time.
func loadDSPCoefsAt(ch *coding.ChannelState, headerOffset int64) {
	table := DSPReadCoefsBE(ch.SF, headerOffset+0x1c, 1, 0)
	ch.Coefs = table[0]
}

func looksLikeDSPHeader(sf streamfile.Streamfile, offset int64) bool {
	if offset+dspHeaderSize > sf.Size() {
		return false
	}
	sampleRate := fields.U32BE(sf, offset+0x08)
	format := fields.U16BE(sf, offset+0x0e)
	return sampleRate > 0 && sampleRate <= 192000 && format == 0
}

// dualDSPLayout positions two independent [header][data] runs (spec 4.4's
// "None" layout applied per channel, since each run is fully
// self-contained and neither channel's position depends on the other).
type dualDSPLayout struct {
	channelDataSize int64
}

func (d dualDSPLayout) channelStart(channelIndex int) int64 {
	return int64(channelIndex)*(dspHeaderSize+d.channelDataSize) + dspHeaderSize
}

func (d dualDSPLayout) NextFrame(ch *coding.ChannelState, channelIndex, channels int, samplesDone int64) {
}

func (d dualDSPLayout) Reset(chans []*coding.ChannelState) {
	for i, ch := range chans {
		ch.StartOffset = d.channelStart(i)
		ch.Offset = ch.StartOffset
		ch.FrameOffset = ch.StartOffset
	}
}
