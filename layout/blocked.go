package layout

import "github.com/vgmstream-go/vgmstream/coding"

// BlockInfo is what a block variant hands back after parsing one block's
// header: each channel's data start within the block, and where the next
// block begins. Grounded on
// original_source/src/layout/blocked_ea_swvr.c's block_update_ea_swvr,
// which computes exactly these three things (per-channel offset,
// current_block_size, next_block_offset) from the block header.
type BlockInfo struct {
	ChannelOffsets []int64
	NextBlock      int64
}

// BlockUpdater parses the block header at blockOffset and returns the
// next block's layout. Implementations live in blocked_variants.go, one
// per container family (EA SWVR, generic fixed-size, etc).
type BlockUpdater func(sf coding.Streamfile, blockOffset int64, channels int) (BlockInfo, error)

// Blocked is the layout for formats whose channel data is split across
// repeating container-level chunks rather than one contiguous run or a
// fixed interleave (spec 4.4's "Blocked" layout).
type Blocked struct {
	Update       BlockUpdater
	blockOffsets []int64 // not written by any method; Reset/ApplyBlock set channel offsets directly
	curBlock     int64
	lastInfo     BlockInfo
}

// LastInfo returns the BlockInfo computed by the most recent Reset or
// ApplyBlock call, letting vgmstream.Stream derive each channel's current
// block end (the next channel's start offset, or NextBlock for the last
// channel) without re-parsing the block header itself.
func (b *Blocked) LastInfo() BlockInfo { return b.lastInfo }

func (b *Blocked) Reset(chans []*coding.ChannelState) {
	if len(chans) == 0 {
		return
	}
	info, err := b.Update(chans[0].SF, chans[0].StartOffset, len(chans))
	if err != nil {
		return
	}
	b.curBlock = info.NextBlock
	b.lastInfo = info
	for i, ch := range chans {
		if i < len(info.ChannelOffsets) {
			ch.Offset = info.ChannelOffsets[i]
			ch.FrameOffset = info.ChannelOffsets[i]
		}
	}
}

// NextFrame is a no-op for Blocked: the render loop detects a crossed
// block boundary itself (ch.Offset reaching the block's channel_size
// limit) and calls ApplyBlock, which is the only thing that actually
// advances b.curBlock. Keeping both would double-advance.
func (b *Blocked) NextFrame(ch *coding.ChannelState, channelIndex, channels int, samplesDone int64) {}

// ApplyBlock re-parses the block at the layout's current cursor and
// writes each channel's new offset, used by vgmstream.Stream once it
// decides a block boundary was crossed.
func (b *Blocked) ApplyBlock(chans []*coding.ChannelState) error {
	if len(chans) == 0 {
		return nil
	}
	info, err := b.Update(chans[0].SF, b.curBlock, len(chans))
	if err != nil {
		return err
	}
	b.curBlock = info.NextBlock
	b.lastInfo = info
	for i, ch := range chans {
		if i < len(info.ChannelOffsets) {
			ch.Offset = info.ChannelOffsets[i]
			ch.FrameOffset = info.ChannelOffsets[i]
		}
	}
	return nil
}
