package coding

func init() {
	Register(NGCDSP, func() Codec { return &ngcDspCodec{} })
}

// dspFrameSize is 8 bytes: 1 header byte + 7 data bytes (14 nibbles).
const dspFrameSize = 8

// dspSamplesPerFrame is 14, one sample per data nibble.
const dspSamplesPerFrame = 14

// ngcDspCodec decodes Nintendo GameCube/Wii ADPCM (spec glossary: "DSP
// (NGC-DSP)"). Coefs (8 predictor pairs, 16 int16 total) are loaded once
// per channel by the format parser via DSPReadCoefsBE/LE into
// ch.Coefs[0:16]; frame position is tracked the same way as PS-ADPCM, in
// ch.StepIndex (nibbles 0..13 consumed in the frame at ch.FrameOffset).
type ngcDspCodec struct{}

func (c *ngcDspCodec) Reset(ch *ChannelState) {
	ch.Hist1, ch.Hist2 = 0, 0
	ch.Offset = ch.StartOffset
	ch.FrameOffset = ch.StartOffset
	ch.StepIndex = 0
}

func (c *ngcDspCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	frameStart := ch.FrameOffset
	nibbleIdx := int(ch.StepIndex)
	header := readDSPHeader(ch, frameStart)

	for produced := 0; produced < samplesToDo; produced++ {
		if nibbleIdx >= dspSamplesPerFrame {
			frameStart += dspFrameSize
			header = readDSPHeader(ch, frameStart)
			nibbleIdx = 0
		}
		sample := decodeDSPNibble(ch, frameStart, header, nibbleIdx)
		out[channelIndex+channels*produced] = sample
		nibbleIdx++
	}

	ch.FrameOffset = frameStart
	ch.StepIndex = int32(nibbleIdx)
	if nibbleIdx >= dspSamplesPerFrame {
		ch.FrameOffset = frameStart + dspFrameSize
		ch.StepIndex = 0
	}
	ch.Offset = ch.FrameOffset
	return nil
}

type dspFrameHeader struct {
	coef1, coef2 int32
	scale        int32
}

func readDSPHeader(ch *ChannelState, frameStart int64) dspFrameHeader {
	b := make([]byte, 1)
	_, _ = ch.SF.Read(b, frameStart)
	predictor := (b[0] >> 4) & 0x7
	shift := b[0] & 0xf
	return dspFrameHeader{
		coef1: ch.Coefs[int(predictor)*2],
		coef2: ch.Coefs[int(predictor)*2+1],
		scale: int32(1) << shift,
	}
}

func decodeDSPNibble(ch *ChannelState, frameStart int64, hdr dspFrameHeader, nibbleIdx int) int16 {
	byteOff := frameStart + 1 + int64(nibbleIdx/2)
	b := make([]byte, 1)
	_, _ = ch.SF.Read(b, byteOff)

	var nibble int32
	if nibbleIdx%2 == 0 {
		nibble = int32(b[0] >> 4)
	} else {
		nibble = int32(b[0] & 0xf)
	}
	if nibble >= 8 {
		nibble -= 16
	}

	prediction := hdr.coef1*ch.Hist1 + hdr.coef2*ch.Hist2
	sample := ((nibble*hdr.scale)<<11 + prediction + 1024) >> 11
	sample = clampS16(sample)

	ch.Hist2 = ch.Hist1
	ch.Hist1 = sample
	return int16(sample)
}

// DSPBytesToSamples converts a byte length covering all channels to a
// per-channel sample count (spec's dsp_bytes_to_samples helper).
func DSPBytesToSamples(bytes int64, channels int) int64 {
	if channels <= 0 {
		return 0
	}
	perChannel := bytes / int64(channels)
	return DSPNibblesToSamples(perChannel * 2)
}

// DSPNibblesToSamples converts a total nibble count (2 per byte) to a
// sample count, spec's dsp_nibbles_to_samples helper: each 16-nibble (8
// byte) frame yields 14 samples (2 header nibbles are not audio data).
func DSPNibblesToSamples(nibbles int64) int64 {
	frames := nibbles / 16
	rem := nibbles % 16
	samples := frames * dspSamplesPerFrame
	if rem > 2 {
		samples += rem - 2
	}
	return samples
}

func (c *ngcDspCodec) BytesToSamples(bytes int64, channels int) int64 {
	return DSPBytesToSamples(bytes, channels)
}
