package coding

func init() {
	Register(Derf, func() Codec { return &derfCodec{} })
}

// derfSteps is the IMA step table extended with seven extra small steps
// at the front (Xilam DERF DPCM, spec 4.3's representative oddball
// delta-codec entry).
var derfSteps = [96]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 16,
	17, 19, 21, 23, 25, 28, 31, 34,
	37, 41, 45, 50, 55, 60, 66, 73,
	80, 88, 97, 107, 118, 130, 143, 157,
	173, 190, 209, 230, 253, 279, 307, 337,
	371, 408, 449, 494, 544, 598, 658, 724,
	796, 876, 963, 1060, 1166, 1282, 1411, 1552,
	1707, 1878, 2066, 2272, 2499, 2749, 3024, 3327,
	3660, 4026, 4428, 4871, 5358, 5894, 6484, 7132,
	7845, 8630, 9493, 10442, 11487, 12635, 13899, 15289,
	16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// derfCodec decodes one byte per sample: a signed-magnitude index into
// derfSteps added to or subtracted from a running history. No per-frame
// header; frame size is 1 byte.
type derfCodec struct{}

func (c *derfCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	ch.Hist1 = 0
}

func (c *derfCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	hist := ch.Hist1
	for k := 0; k < samplesToDo; k++ {
		b := make([]byte, 1)
		_, _ = ch.SF.Read(b, ch.Offset+int64(k))
		code := b[0]

		index := int32(code & 0x7f)
		if index > 95 {
			index = 95
		}
		if code&0x80 != 0 {
			hist -= derfSteps[index]
		} else {
			hist += derfSteps[index]
		}
		hist = clampS16(hist)
		out[channelIndex+channels*k] = int16(hist)
	}
	ch.Offset += int64(samplesToDo)
	ch.Hist1 = hist
	return nil
}

func (c *derfCodec) BytesToSamples(bytes int64, channels int) int64 {
	if channels <= 0 {
		return 0
	}
	return bytes / int64(channels)
}
