package coding

func init() {
	Register(MSIMA, func() Codec { return &msImaCodec{} })
}

// msImaBlockHeaderSize is 4 bytes per channel: s16LE predicted sample,
// step index byte, one reserved byte.
const msImaBlockHeaderSize = 4

// msImaGroupSize is the 4-byte (8 nibble) chunk that MS-IMA round-robins
// across channels within a block's data section.
const msImaGroupSize = 4

// msImaState carries the one per-stream value the codec needs that isn't
// already in ChannelState: the shared block size, set by the format
// parser (e.g. meta/riff_wav.go reading fmt chunk's wBlockAlign).
type msImaState struct {
	blockSize int32
}

// msImaCodec decodes Microsoft IMA ADPCM (WAVE_FORMAT_DVI_ADPCM), spec
// 4.3's "IMA ADPCM and variants" family member with a header shared
// across a full multi-channel block rather than per channel-buffer.
type msImaCodec struct{}

func (c *msImaCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	ch.FrameOffset = ch.StartOffset
	ch.StepIndex = 0
	ch.Hist1 = 0
	ch.Scale = 0
}

func msImaBlockSamples(blockSize int32, channels int) int {
	dataSize := blockSize - msImaBlockHeaderSize*int32(channels)
	if dataSize < 0 || channels <= 0 {
		return 1
	}
	return 1 + int(dataSize/(msImaGroupSize*int32(channels)))*8
}

func (c *msImaCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	st, _ := ch.Extra.(*msImaState)
	if st == nil {
		st = &msImaState{blockSize: int32(msImaBlockHeaderSize*channels + msImaGroupSize*channels)}
		ch.Extra = st
	}

	blockStart := ch.FrameOffset
	sampleIdx := int(ch.StepIndex)
	blockSamples := msImaBlockSamples(st.blockSize, channels)

	hist := ch.Hist1
	stepIndex := ch.Scale
	if sampleIdx == 0 {
		hist, stepIndex = readMsImaHeader(ch, blockStart, channelIndex)
	}

	for produced := 0; produced < samplesToDo; produced++ {
		if sampleIdx >= blockSamples {
			blockStart += int64(st.blockSize)
			sampleIdx = 0
			hist, stepIndex = readMsImaHeader(ch, blockStart, channelIndex)
		}

		var sample int16
		if sampleIdx == 0 {
			sample = int16(hist)
		} else {
			nibble := readMsImaNibble(ch, blockStart, channels, channelIndex, sampleIdx-1)
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

func readMsImaHeader(ch *ChannelState, blockStart int64, channelIndex int) (hist, stepIndex int32) {
	buf := make([]byte, msImaBlockHeaderSize)
	_, _ = ch.SF.Read(buf, blockStart+int64(channelIndex)*msImaBlockHeaderSize)
	hist = int32(int16(uint16(buf[0]) | uint16(buf[1])<<8))
	stepIndex = int32(buf[2])
	if stepIndex > int32(len(imaStepTable)-1) {
		stepIndex = int32(len(imaStepTable) - 1)
	}
	return hist, stepIndex
}

func readMsImaNibble(ch *ChannelState, blockStart int64, channels, channelIndex, nibbleNumber int) int32 {
	groupIndex := nibbleNumber / 8
	nibbleInGroup := nibbleNumber % 8
	groupOffset := blockStart + int64(msImaBlockHeaderSize*channels) +
		int64(groupIndex*msImaGroupSize*channels) + int64(channelIndex*msImaGroupSize)
	byteOff := groupOffset + int64(nibbleInGroup/2)

	b := make([]byte, 1)
	_, _ = ch.SF.Read(b, byteOff)
	if nibbleInGroup%2 == 0 {
		return int32(b[0] & 0xf)
	}
	return int32(b[0] >> 4)
}

func (c *msImaCodec) BytesToSamples(bytes int64, channels int) int64 {
	st := int32(msImaBlockHeaderSize*channels + msImaGroupSize*channels)
	return MSIMABytesToSamples(bytes, channels, int64(st))
}

// MSIMABytesToSamples converts a byte length to a sample count for a
// known block size (spec's ms_ima_bytes_to_samples helper), used by
// format parsers that read the real block size out of a container header
// (e.g. RIFF's fmt chunk wBlockAlign) instead of assuming the smallest
// possible block.
func MSIMABytesToSamples(bytes int64, channels int, blockSize int64) int64 {
	if blockSize <= 0 {
		return 0
	}
	blockSamples := int64(msImaBlockSamples(int32(blockSize), channels))
	blocks := bytes / blockSize
	return blocks * blockSamples
}

// NewMSIMAExtra builds the opaque per-channel state a container parser
// (meta/riff_wav.go) attaches to ChannelState.Extra so the codec uses the
// real wBlockAlign from the fmt chunk instead of self-initializing to the
// smallest possible block on first Decode.
func NewMSIMAExtra(blockSize int32) interface{} {
	return &msImaState{blockSize: blockSize}
}
