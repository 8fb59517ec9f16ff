package coding

func init() {
	Register(XboxIMA, func() Codec { return &xboxImaCodec{} })
}

// xboxImaHeaderSize is 4 bytes: s16LE predicted sample, step index byte,
// one reserved byte, same layout as the MS-IMA per-channel header.
const xboxImaHeaderSize = 4

// xboxImaState carries the per-channel block size (Xbox-IMA blocks are
// independent per channel, unlike MS-IMA's shared multi-channel block),
// set by the format parser from the container's interleave value.
type xboxImaState struct {
	blockSize int32
}

// xboxImaCodec decodes Xbox IMA ADPCM. Unlike msImaCodec, each channel's
// blocks are fully self-contained: the layout engine (layout.Interleave)
// gives each channel its own contiguous byte range, so this codec never
// has to reach across channels to find a nibble.
type xboxImaCodec struct{}

func (c *xboxImaCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	ch.FrameOffset = ch.StartOffset
	ch.StepIndex = 0
	ch.Hist1 = 0
	ch.Scale = 0
}

func xboxImaBlockSamples(blockSize int32) int {
	dataSize := blockSize - xboxImaHeaderSize
	if dataSize < 0 {
		return 1
	}
	return 1 + int(dataSize)*2
}

func (c *xboxImaCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	st, _ := ch.Extra.(*xboxImaState)
	if st == nil {
		st = &xboxImaState{blockSize: 36}
		ch.Extra = st
	}

	blockStart := ch.FrameOffset
	sampleIdx := int(ch.StepIndex)
	blockSamples := xboxImaBlockSamples(st.blockSize)

	hist := ch.Hist1
	stepIndex := ch.Scale
	if sampleIdx == 0 {
		hist, stepIndex = readXboxImaHeader(ch, blockStart)
	}

	for produced := 0; produced < samplesToDo; produced++ {
		if sampleIdx >= blockSamples {
			blockStart += int64(st.blockSize)
			sampleIdx = 0
			hist, stepIndex = readXboxImaHeader(ch, blockStart)
		}

		var sample int16
		if sampleIdx == 0 {
			sample = int16(hist)
		} else {
			nibble := readXboxImaNibble(ch, blockStart, sampleIdx-1)
			sample = imaExpandNibble(nibble, &hist, &stepIndex)
		}
		out[channelIndex+channels*produced] = sample
		sampleIdx++
	}

	ch.FrameOffset = blockStart
	ch.StepIndex = int32(sampleIdx)
	ch.Hist1 = hist
	ch.Scale = stepIndex
	ch.Offset = blockStart
	return nil
}

func readXboxImaHeader(ch *ChannelState, blockStart int64) (hist, stepIndex int32) {
	buf := make([]byte, xboxImaHeaderSize)
	_, _ = ch.SF.Read(buf, blockStart)
	hist = int32(int16(uint16(buf[0]) | uint16(buf[1])<<8))
	stepIndex = int32(buf[2])
	if stepIndex > int32(len(imaStepTable)-1) {
		stepIndex = int32(len(imaStepTable) - 1)
	}
	return hist, stepIndex
}

func readXboxImaNibble(ch *ChannelState, blockStart int64, nibbleNumber int) int32 {
	byteOff := blockStart + xboxImaHeaderSize + int64(nibbleNumber/2)
	b := make([]byte, 1)
	_, _ = ch.SF.Read(b, byteOff)
	if nibbleNumber%2 == 0 {
		return int32(b[0] & 0xf)
	}
	return int32(b[0] >> 4)
}

func (c *xboxImaCodec) BytesToSamples(bytes int64, channels int) int64 {
	const blockSize = 36
	return XboxIMABytesToSamples(bytes, blockSize)
}

// XboxIMABytesToSamples converts a per-channel byte length to a sample
// count for a known block size (spec's xbox_ima_bytes_to_samples helper).
func XboxIMABytesToSamples(bytes int64, blockSize int64) int64 {
	if blockSize <= 0 {
		return 0
	}
	blockSamples := int64(xboxImaBlockSamples(int32(blockSize)))
	blocks := bytes / blockSize
	return blocks * blockSamples
}

// NewXboxIMAExtra builds the opaque per-channel state a container parser
// attaches to ChannelState.Extra so the codec uses the real per-channel
// block size from the container instead of defaulting to 36 bytes.
func NewXboxIMAExtra(blockSize int32) interface{} {
	return &xboxImaState{blockSize: blockSize}
}
