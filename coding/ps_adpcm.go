package coding

func init() {
	Register(PSADPCM, func() Codec { return &psAdpcmCodec{} })
}

// psAdpcmCoefs holds the four fixed predictor coefficient pairs used by
// PlayStation ADPCM (spec glossary: "PS-ADPCM"), scaled by 64 so the
// prediction step stays integer.
var psAdpcmCoefs = [5][2]int32{ //nolint:gochecknoglobals // fixed algorithm constant, not configuration
	{0, 0},
	{60, 0},
	{115, -52},
	{98, -55},
	{122, -60},
}

// psAdpcmFrameSize is the fixed frame size: 1 header byte, 1 flag byte, 14
// bytes of packed 4-bit deltas (28 nibbles -> 28 samples per channel).
const psAdpcmFrameSize = 16

// psAdpcmSamplesPerFrame is 28: 14 data bytes * 2 nibbles each.
const psAdpcmSamplesPerFrame = 28

// PS-ADPCM frame flag-byte values marking loop region boundaries, scanned
// by meta/helpers_psadpcm.go's ps_find_loop_offsets-style helper.
const (
	PSFlagLoopStart  = 0x06
	PSFlagLoopEnd    = 0x03
	PSFlagLoopEndRep = 0x07
)

// psAdpcmCodec decodes PlayStation 4-bit ADPCM. Per-channel frame position
// is tracked in ch.StepIndex (unused by this codec otherwise), counting
// nibbles consumed (0..27) in the frame currently anchored at
// ch.FrameOffset, so Decode can resume correctly across calls that stop
// mid-frame (the render loop rarely asks for an exact frame multiple).
type psAdpcmCodec struct{}

func (c *psAdpcmCodec) Reset(ch *ChannelState) {
	ch.Hist1, ch.Hist2 = 0, 0
	ch.Offset = ch.StartOffset
	ch.FrameOffset = ch.StartOffset
	ch.StepIndex = 0
}

// Decode assumes ch.FrameOffset has already been initialized to the
// channel's data start (vgmstream.OpenStream / Reset both do this); it
// never infers a frame start from ch.Offset alone, since Offset during a
// loop restore may be a restored snapshot while FrameOffset is the
// authoritative frame anchor.
func (c *psAdpcmCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	frameStart := ch.FrameOffset
	nibbleIdx := int(ch.StepIndex)
	hdr := readPSFrameHeader(ch, frameStart)

	for produced := 0; produced < samplesToDo; produced++ {
		if nibbleIdx >= psAdpcmSamplesPerFrame {
			frameStart += psAdpcmFrameSize
			hdr = readPSFrameHeader(ch, frameStart)
			nibbleIdx = 0
		}
		sample := decodePSNibble(ch, frameStart, hdr, nibbleIdx)
		out[channelIndex+channels*produced] = sample
		nibbleIdx++
	}

	ch.FrameOffset = frameStart
	ch.StepIndex = int32(nibbleIdx)
	if nibbleIdx >= psAdpcmSamplesPerFrame {
		ch.FrameOffset = frameStart + psAdpcmFrameSize
		ch.StepIndex = 0
	}
	ch.Offset = ch.FrameOffset
	return nil
}

type psFrameHeader struct {
	predictor int32
	shift     int32
	flag      byte
}

func readPSFrameHeader(ch *ChannelState, frameStart int64) psFrameHeader {
	buf := make([]byte, 2)
	_, _ = ch.SF.Read(buf, frameStart)
	predictor := int32(buf[0]>>4) & 0xf
	if int(predictor) >= len(psAdpcmCoefs) {
		predictor = 0
	}
	return psFrameHeader{
		predictor: predictor,
		shift:     int32(buf[0] & 0xf),
		flag:      buf[1],
	}
}

func decodePSNibble(ch *ChannelState, frameStart int64, hdr psFrameHeader, nibbleIdx int) int16 {
	byteOff := frameStart + 2 + int64(nibbleIdx/2)
	b := make([]byte, 1)
	_, _ = ch.SF.Read(b, byteOff)

	var nibble byte
	if nibbleIdx%2 == 0 {
		nibble = b[0] & 0x0f
	} else {
		nibble = (b[0] >> 4) & 0x0f
	}

	// Sign-extend the 4-bit nibble into the top of a 16-bit word, then
	// shift right by the frame's shift factor (classic PS-ADPCM expansion).
	t := int32(nibble) << 12
	if t&0x8000 != 0 {
		t -= 0x10000
	}
	t >>= hdr.shift

	coefs := psAdpcmCoefs[hdr.predictor]
	s := t + ((ch.Hist1*coefs[0] + ch.Hist2*coefs[1]) >> 6)
	s = clampS16(s)

	ch.Hist2 = ch.Hist1
	ch.Hist1 = s
	return int16(s)
}

func clampS16(v int32) int32 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return v
	}
}

// PSBytesToSamples converts a byte length to a sample count for PS-ADPCM,
// exposed for meta parsers (spec's ps_bytes_to_samples helper).
func PSBytesToSamples(bytes int64, channels int) int64 {
	if channels <= 0 {
		return 0
	}
	frames := bytes / int64(channels) / psAdpcmFrameSize
	return frames * psAdpcmSamplesPerFrame
}

func (c *psAdpcmCodec) BytesToSamples(bytes int64, channels int) int64 {
	return PSBytesToSamples(bytes, channels)
}
