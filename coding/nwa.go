package coding

func init() {
	Register(NWADPCM, func() Codec { return &nwaCodec{} })
}

// nwaBitCursor replicates nwa_decoder.c's getbits(): a sliding 16-bit
// little-endian window over the block buffer. This is NOT a generic
// MSB-first bitstream (icza/bitio's model), so it is hand-rolled rather
// than forced through that library — see DESIGN.md.
type nwaBitCursor struct {
	data []byte
	pos  int
	shift int
}

func (c *nwaBitCursor) getBits(bits int) int32 {
	if c.shift > 8 {
		c.pos++
		c.shift -= 8
	}
	var word uint16
	if c.pos < len(c.data) {
		word = uint16(c.data[c.pos])
	}
	if c.pos+1 < len(c.data) {
		word |= uint16(c.data[c.pos+1]) << 8
	}
	ret := int32(int16(word)) >> uint(c.shift)
	c.shift += bits
	mask := int32(1<<uint(bits)) - 1
	return ret & mask
}

// nwaState is the per-stream decoder shared by every channel (NWA blocks
// interleave channels inside one bitstream, so only channelIndex 0's
// Decode call actually reads the stream; other channels' calls become
// no-ops reading from the already-populated shared buffer).
type nwaState struct {
	channels      int
	bps           int32
	complevel     int32
	blocks        int32
	blockSize     int32
	restSize      int32
	compDataSize  int32
	offsets       []int64
	useRunLength  bool

	curBlock     int32
	outdata      []int16 // interleaved decoded samples for the current block
	outPos       int     // next unread interleaved sample index
	samplesAvail int     // interleaved samples remaining in outdata from outPos
}

func nwaUseRunLength(channels int, bps, complevel int32) bool {
	if channels == 2 && bps == 16 && complevel == 2 {
		return false
	}
	if complevel == 5 {
		return channels != 2
	}
	return false
}

// nwaCodec decodes Narcissu/AJ's "NWA" variable-bit DPCM (spec 4.3's NWA
// entry). Header fields, offset index and the decode_block type-0/1-6/7
// branching below are ported from nwa_decoder.c.
type nwaCodec struct{}

func (c *nwaCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	if st, ok := ch.Extra.(*nwaState); ok {
		st.curBlock = 0
		st.outPos = 0
		st.samplesAvail = 0
	}
}

func (c *nwaCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	st, ok := ch.Extra.(*nwaState)
	if !ok || st == nil {
		return ErrDecodeTransient
	}

	// Only the first channel drives decoding; the block already produced
	// every channel's samples interleaved into st.outdata.
	if channelIndex != 0 {
		return nil
	}

	produced := 0
	for produced < samplesToDo {
		if st.samplesAvail <= 0 {
			if err := nwaDecodeNextBlock(ch, st); err != nil {
				for ; produced < samplesToDo; produced++ {
					for cc := 0; cc < channels; cc++ {
						out[cc+channels*produced] = 0
					}
				}
				return nil
			}
		}

		toRead := st.samplesAvail / st.channels
		remaining := samplesToDo - produced
		if toRead > remaining {
			toRead = remaining
		}
		if toRead <= 0 {
			break
		}

		for k := 0; k < toRead; k++ {
			for cc := 0; cc < channels && cc < st.channels; cc++ {
				out[cc+channels*(produced+k)] = st.outdata[st.outPos+k*st.channels+cc]
			}
		}
		st.outPos += toRead * st.channels
		st.samplesAvail -= toRead * st.channels
		produced += toRead
	}
	return nil
}

func nwaDecodeNextBlock(ch *ChannelState, st *nwaState) error {
	if st.curBlock >= st.blocks {
		return ErrDecodeTransient
	}

	var curBlockSize, curCompSize int64
	bytesPerSample := st.bps / 8
	if st.curBlock != st.blocks-1 {
		curBlockSize = int64(st.blockSize) * int64(bytesPerSample)
		curCompSize = st.offsets[st.curBlock+1] - st.offsets[st.curBlock]
	} else {
		curBlockSize = int64(st.restSize) * int64(bytesPerSample)
		curCompSize = int64(st.blockSize) * int64(bytesPerSample) * 2
	}

	buf := make([]byte, curCompSize)
	_, _ = ch.SF.Read(buf, st.offsets[st.curBlock])

	st.outdata = nwaDecodeBlock(st, buf, int(curBlockSize))
	st.outPos = 0
	st.samplesAvail = len(st.outdata)
	st.curBlock++
	return nil
}

// nwaDecodeBlock ports decode_block(): reads the initial per-channel PCM
// sample, then a bitstream of differential codes (type 0 = run-length or
// no-op, 1-6 = normal diff with complevel-dependent bit width/shift, 7 =
// large diff), writing dsize interleaved samples.
func nwaDecodeBlock(st *nwaState, data []byte, outDataSize int) []int16 {
	dsize := outDataSize / int(st.bps/8)
	outdata := make([]int16, dsize)

	d := [2]int32{}
	pos := 0
	for i := 0; i < st.channels; i++ {
		if st.bps == 8 {
			d[i] = int32(int8(data[pos]))
			pos++
		} else {
			d[i] = int32(int16(uint16(data[pos]) | uint16(data[pos+1])<<8))
			pos += 2
		}
	}

	cursor := &nwaBitCursor{data: data[pos:]}
	flipFlag := 0
	runlength := 0

	for i := 0; i < dsize; i++ {
		if runlength == 0 {
			typ := cursor.getBits(3)

			switch {
			case typ == 7:
				if cursor.getBits(1) == 1 {
					d[flipFlag] = 0
				} else {
					var bits, shift int
					if st.complevel >= 3 {
						bits, shift = 8, 9
					} else {
						bits, shift = 8-int(st.complevel), 2+7+int(st.complevel)
					}
					mask1 := int32(1 << uint(bits-1))
					mask2 := mask1 - 1
					b := cursor.getBits(bits)
					if b&mask1 != 0 {
						d[flipFlag] -= (b & mask2) << uint(shift)
					} else {
						d[flipFlag] += (b & mask2) << uint(shift)
					}
				}
			case typ != 0:
				var bits, shift int
				if st.complevel >= 3 {
					bits, shift = int(st.complevel)+3, 1+int(typ)
				} else {
					bits, shift = 5-int(st.complevel), 2+int(typ)+int(st.complevel)
				}
				mask1 := int32(1 << uint(bits-1))
				mask2 := mask1 - 1
				b := cursor.getBits(bits)
				if b&mask1 != 0 {
					d[flipFlag] -= (b & mask2) << uint(shift)
				} else {
					d[flipFlag] += (b & mask2) << uint(shift)
				}
			default: // typ == 0
				if st.useRunLength {
					runlength = int(cursor.getBits(1))
					if runlength == 1 {
						runlength = int(cursor.getBits(2))
						if runlength == 3 {
							runlength = int(cursor.getBits(8))
						}
					}
				}
			}
		} else {
			runlength--
		}

		if st.bps == 8 {
			outdata[i] = int16(d[flipFlag] * 256)
		} else {
			outdata[i] = int16(clampS16(d[flipFlag]))
		}

		if st.channels == 2 {
			flipFlag ^= 1
		}
	}

	return outdata
}

func (c *nwaCodec) BytesToSamples(bytes int64, channels int) int64 {
	// NWA's sample count comes from the container header (samplecount),
	// not a fixed bytes-per-sample ratio; format parsers read it directly.
	return 0
}

// NewNWAExtra builds the opaque per-stream decode state meta/nwa.go must
// attach to every channel's ChannelState.Extra (all channels share one
// nwaState, since NWA interleaves channels inside one bitstream; only
// channel 0's Decode call actually advances it).
func NewNWAExtra(channels int, bps, complevel, blocks, blockSize, restSize, compDataSize int32, offsets []int64) interface{} {
	return &nwaState{
		channels:     channels,
		bps:          bps,
		complevel:    complevel,
		blocks:       blocks,
		blockSize:    blockSize,
		restSize:     restSize,
		compDataSize: compDataSize,
		offsets:      offsets,
		useRunLength: nwaUseRunLength(channels, bps, complevel),
	}
}
