package layout

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

// EASWVRUpdate ports block_update_ea_swvr from
// original_source/src/layout/blocked_ea_swvr.c: each block starts with a
// 4-byte big-endian FourCC and a 4-byte size, and the header/channel
// sizes that follow depend on which FourCC it is.
func EASWVRUpdate(sf coding.Streamfile, blockOffset int64, channels int) (BlockInfo, error) {
	blockID := fields.U32BE(sf, blockOffset+0x00)
	blockSize := int64(fields.U32BE(sf, blockOffset+0x04))

	var headerSize, channelSize int64

	switch blockID {
	case 0x5641474D: // "VAGM"
		if fields.U16BE(sf, blockOffset+0x1a) == 0x0024 {
			headerSize = 0x40
		} else {
			headerSize = 0x1c
		}
		channelSize = (blockSize - headerSize) / int64(channels)
	case 0x56414742: // "VAGB"
		if fields.U16BE(sf, blockOffset+0x1a) == 0x6400 {
			headerSize = 0x40
		} else {
			headerSize = 0x18
		}
		channelSize = (blockSize - headerSize) / int64(channels)
	case 0x4453504D: // "DSPM"
		headerSize = 0x60
		channelSize = (blockSize - headerSize) / int64(channels)
	case 0x44535042: // "DSPB"
		headerSize = 0x40
		channelSize = (blockSize - headerSize) / int64(channels)
	case 0x4D534943: // "MSIC"
		headerSize = 0x1c
		channelSize = (blockSize - headerSize) / int64(channels)
	case 0x53484F43: // "SHOC"
		if fields.U32BE(sf, blockOffset+0x10) == 0x53444154 { // "SDAT"
			headerSize = 0x14
			channelSize = (blockSize - headerSize) / int64(channels)
		}
	case 0x46494C4C: // "FILL"
		headerSize = 0x08
		switch {
		case (blockOffset+0x04)%0x6000 == 0:
			blockSize = 0x04
		case (blockOffset+0x04)%0x10000 == 0:
			blockSize = 0x04
		case blockSize > 0x100000:
			blockSize = 0x04
		}
	default:
		// unknown block id: 0 samples, skip past it using its declared size
	}

	offsets := make([]int64, channels)
	for i := range offsets {
		offsets[i] = blockOffset + headerSize + channelSize*int64(i)
	}

	return BlockInfo{
		ChannelOffsets: offsets,
		NextBlock:      blockOffset + blockSize,
	}, nil
}

// FixedSizeBlocks returns an Update function for the simplest Blocked
// variant: a constant header size, then a fixed per-channel chunk size,
// repeating for the whole file (no container FourCC to dispatch on).
func FixedSizeBlocks(headerSize, channelSize int64) BlockUpdater {
	return func(sf coding.Streamfile, blockOffset int64, channels int) (BlockInfo, error) {
		offsets := make([]int64, channels)
		for i := range offsets {
			offsets[i] = blockOffset + headerSize + channelSize*int64(i)
		}
		return BlockInfo{
			ChannelOffsets: offsets,
			NextBlock:      blockOffset + headerSize + channelSize*int64(channels),
		}, nil
	}
}
