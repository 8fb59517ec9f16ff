package coding

func init() {
	Register(OkiADPCM, func() Codec { return &okiAdpcmCodec{} })
}

// okiStepSizes is the 49-entry OKI/Dialogic table, a subsection of the
// IMA step table (spec 4.3's "OKI/VOX ADPCM" family member).
var okiStepSizes = [49]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	16, 17, 19, 21, 23, 25, 28, 31,
	34, 37, 41, 45, 50, 55, 60, 66,
	73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658,
	724, 796, 876, 963, 1060, 1166, 1282, 1411,
	1552,
}

var okiIndexTable = [16]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// okiAdpcmCodec decodes OKI/Dialogic/VOX 4-bit ADPCM (the oki4s variant:
// shift-add style against the OKI step table, 16-bit clamped history).
// A mono stream packs two samples per byte, high nibble first; with more
// than one channel each sample takes one byte of the channel's stream,
// the high nibble for even channels and the low nibble for odd ones.
type okiAdpcmCodec struct{}

func (c *okiAdpcmCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	ch.Hist1 = 0
	ch.StepIndex = 0
}

func (c *okiAdpcmCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	hist := ch.Hist1
	stepIndex := ch.StepIndex
	if stepIndex < 0 {
		stepIndex = 0
	}
	if stepIndex > 48 {
		stepIndex = 48
	}

	isStereo := channels > 1
	for k := 0; k < samplesToDo; k++ {
		sampleN := int64(k)
		var byteOff int64
		var nibbleShift uint
		if isStereo {
			byteOff = ch.Offset + sampleN
			if channelIndex&1 == 0 {
				nibbleShift = 4
			} else {
				nibbleShift = 0
			}
		} else {
			byteOff = ch.Offset + sampleN/2
			if sampleN&1 == 0 {
				nibbleShift = 4
			} else {
				nibbleShift = 0
			}
		}

		b := make([]byte, 1)
		_, _ = ch.SF.Read(b, byteOff)
		code := int32(b[0]>>nibbleShift) & 0xf

		step := okiStepSizes[stepIndex] << 4

		delta := step >> 3
		if code&1 != 0 {
			delta += step >> 2
		}
		if code&2 != 0 {
			delta += step >> 1
		}
		if code&4 != 0 {
			delta += step
		}
		if code&8 != 0 {
			delta = -delta
		}
		hist = clampS16(hist + delta)

		stepIndex += okiIndexTable[code]
		if stepIndex < 0 {
			stepIndex = 0
		}
		if stepIndex > 48 {
			stepIndex = 48
		}

		out[channelIndex+channels*k] = int16(hist)
	}

	if isStereo {
		ch.Offset += int64(samplesToDo)
	} else {
		ch.Offset += int64(samplesToDo) / 2
	}
	ch.Hist1 = hist
	ch.StepIndex = stepIndex
	return nil
}

func (c *okiAdpcmCodec) BytesToSamples(bytes int64, channels int) int64 {
	if channels <= 0 {
		return 0
	}
	return bytes * 2 / int64(channels)
}
