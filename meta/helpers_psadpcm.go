package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

// PSFindLoopOffsets scans PS-ADPCM frame flag bytes for loop markers
// (spec 4.5's ps_find_loop_offsets): each frame's second byte signals
// PSFlagLoopStart/PSFlagLoopEnd/PSFlagLoopEndRep. interleave is the
// per-channel block size (0 for mono/non-interleaved streams, where every
// frame belongs to the one channel being scanned).
func PSFindLoopOffsets(sf streamfile.Streamfile, start, size int64, channels int, interleave int64) (loopStart, loopEnd int64, ok bool) {
	const frameSize = 16
	pos := start
	end := start + size
	sample := int64(0)
	frameBuf := make([]byte, 2)

	for pos+frameSize <= end {
		if interleave > 0 {
			// Only scan channel 0's frames; flags are mirrored across
			// channels in every format this helper has been used for.
			blockOffset := (pos - start) % (interleave * int64(channels))
			if blockOffset >= interleave {
				pos += frameSize
				continue
			}
		}
		if _, err := sf.Read(frameBuf, pos); err != nil {
			break
		}
		switch frameBuf[1] {
		case coding.PSFlagLoopStart:
			loopStart = sample
		case coding.PSFlagLoopEnd, coding.PSFlagLoopEndRep:
			loopEnd = sample + 28
			ok = true
		}
		sample += 28
		pos += frameSize
	}
	return loopStart, loopEnd, ok
}
