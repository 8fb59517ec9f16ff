// Package layout implements the three ways vgmstream arranges codec
// frames across a file (spec section 4.4): contiguous (None), fixed
// per-channel byte ranges (Interleave), and repeating multi-section
// chunks (Blocked). A Layout's only job is deciding each channel's
// ChannelState.Offset before the codec decodes; it never reads audio
// data itself.
//
// The block-cursor bookkeeping style (advance, recompute next boundary,
// never re-derive position from scratch) follows
// go-gameid's chd.HunkMap, which walks a CHD's hunk map the same way.
package layout

import "github.com/vgmstream-go/vgmstream/coding"

// Layout decides channel read positions for one render call.
type Layout interface {
	// NextFrame is called once per channel before that channel's codec
	// Decode, so the layout can enforce block/interleave boundaries
	// (seek ch.Offset to the start of this channel's next byte range).
	NextFrame(ch *coding.ChannelState, channelIndex, channels int, samplesDone int64)

	// Reset restores every channel to its initial read position,
	// mirroring coding.Resetter's contract for codecs.
	Reset(chans []*coding.ChannelState)
}

// None is the trivial layout: channels are fully interleaved by the
// codec itself (PCM, MS-IMA, MS-ADPCM) or the file has one channel, so
// there is nothing for the layout to enforce.
type None struct{}

func (None) NextFrame(ch *coding.ChannelState, channelIndex, channels int, samplesDone int64) {}

func (None) Reset(chans []*coding.ChannelState) {
	for _, ch := range chans {
		ch.Offset = ch.StartOffset
		ch.FrameOffset = ch.StartOffset
	}
}
