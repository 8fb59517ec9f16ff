package coding

func init() {
	Register(CircusADPCM, func() Codec { return &circusCodec{} })
}

// circusCodec decodes Circus XPCM "mode 2" ADPCM: one signed byte per
// sample shifted left by an adaptive scale, the scale itself adjusted by
// whether the byte saturated (127/-128) or went to zero. One byte per
// sample, no frame header.
type circusCodec struct{}

func (c *circusCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	ch.Hist1 = 0
	ch.Scale = 0
}

func (c *circusCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	hist := ch.Hist1
	scale := ch.Scale

	for k := 0; k < samplesToDo; k++ {
		b := make([]byte, 1)
		_, _ = ch.SF.Read(b, ch.Offset+int64(k))
		code := int32(int8(b[0]))

		hist += code << uint(scale)
		switch {
		case code == 0:
			if scale > 0 {
				scale--
			}
		case code == 127 || code == -128:
			if scale < 8 {
				scale++
			}
		}

		out[channelIndex+channels*k] = int16(clampS16(hist))
	}

	ch.Offset += int64(samplesToDo)
	ch.Hist1 = hist
	ch.Scale = scale
	return nil
}

func (c *circusCodec) BytesToSamples(bytes int64, channels int) int64 {
	if channels <= 0 {
		return 0
	}
	return bytes / int64(channels)
}
