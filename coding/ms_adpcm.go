package coding

func init() {
	Register(MSADPCM, func() Codec { return &msAdpcmCodec{} })
}

// msAdpcmCoefs holds the 7 standard Microsoft ADPCM predictor pairs
// (WAVEFORMATEX bCoefficients, always present even when a file's own
// coefficient table is truncated to fewer entries).
var msAdpcmCoefs = [7][2]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	{256, 0}, {512, -256}, {0, 0}, {192, 64}, {240, 0}, {460, -208}, {392, -232},
}

// msAdpcmAdaptTable scales idelta after every nibble, indexed directly by
// the unsigned 4-bit nibble value.
var msAdpcmAdaptTable = [16]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	230, 230, 230, 230, 307, 409, 512, 614,
	768, 614, 512, 409, 307, 230, 230, 230,
}

// msAdpcmHeaderSize is the per-channel block header: predictor (1 byte),
// idelta (s16LE), sample1 (s16LE), sample2 (s16LE).
const msAdpcmHeaderSize = 7

// msAdpcmState carries the shared block size, set by the format parser
// from the WAVE fmt chunk's wBlockAlign.
type msAdpcmState struct {
	blockSize int32
	delta     int32
}

// msAdpcmCodec decodes Microsoft ADPCM (fmt tag 0x0002), distinct from
// MS-IMA: each nibble's prediction comes from a per-block adaptive
// coefficient pair rather than a shared step-size table.
type msAdpcmCodec struct{}

func (c *msAdpcmCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	ch.FrameOffset = ch.StartOffset
	ch.StepIndex = 0
	ch.Hist1, ch.Hist2 = 0, 0
	if st, ok := ch.Extra.(*msAdpcmState); ok {
		st.delta = 0
	}
}

func msAdpcmBlockSamples(blockSize int32, channels int) int {
	if channels <= 0 {
		return 2
	}
	dataBytes := blockSize - msAdpcmHeaderSize*int32(channels)
	if dataBytes < 0 {
		return 2
	}
	nibblesPerChannel := (dataBytes * 2) / int32(channels)
	return 2 + int(nibblesPerChannel)
}

func (c *msAdpcmCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	st, _ := ch.Extra.(*msAdpcmState)
	if st == nil {
		st = &msAdpcmState{blockSize: int32(msAdpcmHeaderSize*channels + channels)}
		ch.Extra = st
	}

	blockStart := ch.FrameOffset
	sampleIdx := int(ch.StepIndex)
	blockSamples := msAdpcmBlockSamples(st.blockSize, channels)

	coef1, coef2 := ch.Coefs[0], ch.Coefs[1]
	if sampleIdx == 0 {
		coef1, coef2 = readMsAdpcmBlockStart(ch, st, blockStart, channels, channelIndex)
	}

	for produced := 0; produced < samplesToDo; produced++ {
		if sampleIdx >= blockSamples {
			blockStart += int64(st.blockSize)
			sampleIdx = 0
			coef1, coef2 = readMsAdpcmBlockStart(ch, st, blockStart, channels, channelIndex)
		}

		var sample int16
		switch sampleIdx {
		case 0:
			sample = int16(ch.Hist2)
		case 1:
			sample = int16(ch.Hist1)
		default:
			nibbleNumber := (sampleIdx-2)*channels + channelIndex
			nibble := readMsAdpcmNibble(ch, blockStart, channels, nibbleNumber)
			sample = decodeMsAdpcmNibble(ch, st, coef1, coef2, nibble)
		}
		out[channelIndex+channels*produced] = sample
		sampleIdx++
	}

	ch.FrameOffset = blockStart
	ch.StepIndex = int32(sampleIdx)
	ch.Coefs[0], ch.Coefs[1] = coef1, coef2
	ch.Offset = blockStart
	return nil
}

func readMsAdpcmBlockStart(ch *ChannelState, st *msAdpcmState, blockStart int64, channels, channelIndex int) (coef1, coef2 int32) {
	base := blockStart + int64(channelIndex)
	pb := make([]byte, 1)
	_, _ = ch.SF.Read(pb, base)
	predictor := int32(pb[0])
	if int(predictor) >= len(msAdpcmCoefs) {
		predictor = 0
	}
	coef1, coef2 = msAdpcmCoefs[predictor][0], msAdpcmCoefs[predictor][1]

	wordAt := func(off int64) int32 {
		b := make([]byte, 2)
		_, _ = ch.SF.Read(b, off)
		return int32(int16(uint16(b[0]) | uint16(b[1])<<8))
	}
	fieldBase := blockStart + int64(channels) + int64(channelIndex)*2
	st.delta = wordAt(fieldBase)
	sample1 := wordAt(fieldBase + int64(channels)*2)
	sample2 := wordAt(fieldBase + int64(channels)*4)

	ch.Hist1 = sample1
	ch.Hist2 = sample2
	return coef1, coef2
}

func readMsAdpcmNibble(ch *ChannelState, blockStart int64, channels, nibbleNumber int) int32 {
	headerSize := int64(msAdpcmHeaderSize * channels)
	byteOff := blockStart + headerSize + int64(nibbleNumber/2)
	b := make([]byte, 1)
	_, _ = ch.SF.Read(b, byteOff)
	if nibbleNumber%2 == 0 {
		return int32(b[0] >> 4)
	}
	return int32(b[0] & 0xf)
}

func decodeMsAdpcmNibble(ch *ChannelState, st *msAdpcmState, coef1, coef2 int32, nibble int32) int16 {
	signed := nibble
	if signed >= 8 {
		signed -= 16
	}

	pred := (ch.Hist1*coef1 + ch.Hist2*coef2) >> 8
	pred += signed * st.delta
	sample := clampS16(pred)

	st.delta = (msAdpcmAdaptTable[nibble] * st.delta) >> 8
	if st.delta < 16 {
		st.delta = 16
	}

	ch.Hist2 = ch.Hist1
	ch.Hist1 = sample
	return int16(sample)
}

// NewMSADPCMExtra builds the opaque per-channel state a container parser
// (meta/riff_wav.go) attaches to ChannelState.Extra so the codec uses the
// real wBlockAlign from the fmt chunk instead of self-initializing to the
// smallest possible block on first Decode.
func NewMSADPCMExtra(blockSize int32) interface{} {
	return &msAdpcmState{blockSize: blockSize}
}

func (c *msAdpcmCodec) BytesToSamples(bytes int64, channels int) int64 {
	blockSize := int32(msAdpcmHeaderSize*channels + channels)
	return MSADPCMBytesToSamples(bytes, channels, int64(blockSize))
}

// MSADPCMBytesToSamples converts a byte length to a sample count for a
// known block size (spec's msadpcm_bytes_to_samples helper), used by
// format parsers that read the real wBlockAlign from a WAVE fmt chunk.
func MSADPCMBytesToSamples(bytes int64, channels int, blockSize int64) int64 {
	if blockSize <= 0 {
		return 0
	}
	blockSamples := int64(msAdpcmBlockSamples(int32(blockSize), channels))
	blocks := bytes / blockSize
	return blocks * blockSamples
}
