package layout

import (
	"testing"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

func TestFixedSizeBlocksLayout(t *testing.T) {
	t.Parallel()

	// header 8 bytes, then 2 channels of 4 bytes each, repeating.
	sf := streamfile.NewMemory("test.blk", make([]byte, 64))
	b := &Blocked{Update: FixedSizeBlocks(8, 4)}

	chans := []*coding.ChannelState{
		{SF: sf, StartOffset: 0},
		{SF: sf, StartOffset: 0},
	}
	b.Reset(chans)

	if chans[0].Offset != 8 {
		t.Errorf("channel 0 offset = %d, want 8", chans[0].Offset)
	}
	if chans[1].Offset != 12 {
		t.Errorf("channel 1 offset = %d, want 12", chans[1].Offset)
	}
	if b.LastInfo().NextBlock != 16 {
		t.Errorf("NextBlock = %d, want 16 (8 header + 2*4 channel data)", b.LastInfo().NextBlock)
	}
}

func TestFixedSizeBlocksApplyBlockAdvances(t *testing.T) {
	t.Parallel()

	sf := streamfile.NewMemory("test.blk", make([]byte, 64))
	b := &Blocked{Update: FixedSizeBlocks(8, 4)}

	chans := []*coding.ChannelState{
		{SF: sf, StartOffset: 0},
		{SF: sf, StartOffset: 0},
	}
	b.Reset(chans)

	if err := b.ApplyBlock(chans); err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}
	// second block starts at 16 (first NextBlock)
	if chans[0].Offset != 16+8 {
		t.Errorf("channel 0 offset after second block = %d, want %d", chans[0].Offset, 16+8)
	}
	if chans[1].Offset != 16+12 {
		t.Errorf("channel 1 offset after second block = %d, want %d", chans[1].Offset, 16+12)
	}
	if b.LastInfo().NextBlock != 32 {
		t.Errorf("NextBlock = %d, want 32", b.LastInfo().NextBlock)
	}
}

func TestBlockedNextFrameIsNoop(t *testing.T) {
	t.Parallel()

	b := &Blocked{Update: FixedSizeBlocks(8, 4)}
	ch := &coding.ChannelState{Offset: 42}
	b.NextFrame(ch, 0, 1, 0)
	if ch.Offset != 42 {
		t.Errorf("Offset changed to %d, want unchanged 42", ch.Offset)
	}
}

func TestEASWVRUpdateDSPB(t *testing.T) {
	t.Parallel()

	// DSPB block: header 0x40, 2 channels, block_size field at +0x04.
	blockSize := int64(0x40 + 2*0x20)
	data := make([]byte, blockSize)
	copy(data[0x00:], []byte{0x44, 0x53, 0x50, 0x42}) // "DSPB"
	data[0x04] = byte(blockSize >> 24)
	data[0x05] = byte(blockSize >> 16)
	data[0x06] = byte(blockSize >> 8)
	data[0x07] = byte(blockSize)

	sf := streamfile.NewMemory("test.swvr", data)
	info, err := EASWVRUpdate(sf, 0, 2)
	if err != nil {
		t.Fatalf("EASWVRUpdate: %v", err)
	}
	if len(info.ChannelOffsets) != 2 {
		t.Fatalf("got %d channel offsets, want 2", len(info.ChannelOffsets))
	}
	if info.ChannelOffsets[0] != 0x40 {
		t.Errorf("channel 0 offset = %#x, want 0x40", info.ChannelOffsets[0])
	}
	if info.ChannelOffsets[1] != 0x40+0x20 {
		t.Errorf("channel 1 offset = %#x, want %#x", info.ChannelOffsets[1], 0x40+0x20)
	}
	if info.NextBlock != blockSize {
		t.Errorf("NextBlock = %d, want %d", info.NextBlock, blockSize)
	}
}
