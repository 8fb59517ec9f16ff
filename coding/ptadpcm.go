package coding

func init() {
	Register(PTADPCM, func() Codec { return &ptAdpcmCodec{} })
}

// ptAdpcmTable is Platinum's "PtADPCM" (Wwise) combined step/index table:
// for a given adaptive index and nibble value it yields both the signed
// delta to apply and the next index, precomputed the way an IMA table
// would normally be two separate tables. Only indexes 0..11 are non-zero;
// the encoder never emits an index above 12.
var ptAdpcmTable = [16][16][2]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	{
		{-14, 2}, {-10, 2}, {-7, 1}, {-5, 1}, {-3, 0}, {-2, 0}, {-1, 0}, {0, 0},
		{0, 0}, {1, 0}, {2, 0}, {3, 0}, {5, 1}, {7, 1}, {10, 2}, {14, 2},
	},
	{
		{-28, 3}, {-20, 3}, {-14, 2}, {-10, 2}, {-7, 1}, {-5, 1}, {-3, 1}, {-1, 0},
		{1, 0}, {3, 1}, {5, 1}, {7, 1}, {10, 2}, {14, 2}, {20, 3}, {28, 3},
	},
	{
		{-56, 4}, {-40, 4}, {-28, 3}, {-20, 3}, {-14, 2}, {-10, 2}, {-6, 2}, {-2, 1},
		{2, 1}, {6, 2}, {10, 2}, {14, 2}, {20, 3}, {28, 3}, {40, 4}, {56, 4},
	},
	{
		{-112, 5}, {-80, 5}, {-56, 4}, {-40, 4}, {-28, 3}, {-20, 3}, {-12, 3}, {-4, 2},
		{4, 2}, {12, 3}, {20, 3}, {28, 3}, {40, 4}, {56, 4}, {80, 5}, {112, 5},
	},
	{
		{-224, 6}, {-160, 6}, {-112, 5}, {-80, 5}, {-56, 4}, {-40, 4}, {-24, 4}, {-8, 3},
		{8, 3}, {24, 4}, {40, 4}, {56, 4}, {80, 5}, {112, 5}, {160, 6}, {224, 6},
	},
	{
		{-448, 7}, {-320, 7}, {-224, 6}, {-160, 6}, {-112, 5}, {-80, 5}, {-48, 5}, {-16, 4},
		{16, 4}, {48, 5}, {80, 5}, {112, 5}, {160, 6}, {224, 6}, {320, 7}, {448, 7},
	},
	{
		{-896, 8}, {-640, 8}, {-448, 7}, {-320, 7}, {-224, 6}, {-160, 6}, {-96, 6}, {-32, 5},
		{32, 5}, {96, 6}, {160, 6}, {224, 6}, {320, 7}, {448, 7}, {640, 8}, {896, 8},
	},
	{
		{-1792, 9}, {-1280, 9}, {-896, 8}, {-640, 8}, {-448, 7}, {-320, 7}, {-192, 7}, {-64, 6},
		{64, 6}, {192, 7}, {320, 7}, {448, 7}, {640, 8}, {896, 8}, {1280, 9}, {1792, 9},
	},
	{
		{-3584, 10}, {-2560, 10}, {-1792, 9}, {-1280, 9}, {-896, 8}, {-640, 8}, {-384, 8}, {-128, 7},
		{128, 7}, {384, 8}, {640, 8}, {896, 8}, {1280, 9}, {1792, 9}, {2560, 10}, {3584, 10},
	},
	{
		{-7168, 11}, {-5120, 11}, {-3584, 10}, {-2560, 10}, {-1792, 9}, {-1280, 9}, {-768, 9}, {-256, 8},
		{256, 8}, {768, 9}, {1280, 9}, {1792, 9}, {2560, 10}, {3584, 10}, {5120, 11}, {7168, 11},
	},
	{
		{-14336, 11}, {-10240, 11}, {-7168, 11}, {-5120, 11}, {-3584, 10}, {-2560, 10}, {-1536, 10}, {-512, 9},
		{512, 9}, {1536, 10}, {2560, 10}, {3584, 10}, {5120, 11}, {7168, 11}, {10240, 11}, {14336, 11},
	},
	{
		{-28672, 11}, {-20480, 11}, {-14336, 11}, {-10240, 11}, {-7168, 11}, {-5120, 11}, {-3072, 11}, {-1024, 10},
		{1024, 10}, {3072, 11}, {5120, 11}, {7168, 11}, {10240, 11}, {14336, 11}, {20480, 11}, {28672, 11},
	},
}

// ptAdpcmState carries the per-channel block (frame) size, set by the
// format parser from the container's declared frame size field.
type ptAdpcmState struct {
	frameSize int32
}

// ptAdpcmCodec decodes Platinum Games' Wwise "PtADPCM". Each frame packs
// its own 2-sample header (hist2, hist1) plus an adaptive table index, so
// frames need no cross-frame history beyond what the header re-supplies.
type ptAdpcmCodec struct{}

func (c *ptAdpcmCodec) Reset(ch *ChannelState) {
	ch.Offset = ch.StartOffset
	ch.FrameOffset = ch.StartOffset
	ch.StepIndex = 0
	ch.Hist1, ch.Hist2 = 0, 0
	ch.Scale = 0
}

func ptAdpcmSamplesPerFrame(frameSize int32) int {
	if frameSize < 5 {
		return 2
	}
	return 2 + int(frameSize-5)*2
}

func (c *ptAdpcmCodec) Decode(ch *ChannelState, out []int16, _, samplesToDo, channels, channelIndex int) error {
	st, _ := ch.Extra.(*ptAdpcmState)
	if st == nil {
		st = &ptAdpcmState{frameSize: 0x24}
		ch.Extra = st
	}

	frameStart := ch.FrameOffset
	sampleIdx := int(ch.StepIndex)
	samplesPerFrame := ptAdpcmSamplesPerFrame(st.frameSize)

	if sampleIdx == 0 {
		readPtAdpcmHeader(ch, frameStart)
	}

	for produced := 0; produced < samplesToDo; produced++ {
		if sampleIdx >= samplesPerFrame {
			frameStart += int64(st.frameSize)
			sampleIdx = 0
			readPtAdpcmHeader(ch, frameStart)
		}

		var sample int16
		switch sampleIdx {
		case 0:
			sample = int16(ch.Hist2)
		case 1:
			sample = int16(ch.Hist1)
		default:
			nibbleIdx := sampleIdx - 2
			sample = decodePtAdpcmNibble(ch, st, frameStart, nibbleIdx)
		}
		out[channelIndex+channels*produced] = sample
		sampleIdx++
	}

	ch.FrameOffset = frameStart
	ch.StepIndex = int32(sampleIdx)
	ch.Offset = frameStart
	return nil
}

func readPtAdpcmHeader(ch *ChannelState, frameStart int64) {
	buf := make([]byte, 5)
	_, _ = ch.SF.Read(buf, frameStart)
	ch.Hist2 = int32(int16(uint16(buf[0]) | uint16(buf[1])<<8))
	ch.Hist1 = int32(int16(uint16(buf[2]) | uint16(buf[3])<<8))
	idx := int32(buf[4])
	if idx > 12 {
		idx = 12
	}
	ch.Scale = idx
}

func decodePtAdpcmNibble(ch *ChannelState, st *ptAdpcmState, frameStart int64, nibbleIdx int) int16 {
	byteOff := frameStart + 5 + int64(nibbleIdx/2)
	b := make([]byte, 1)
	_, _ = ch.SF.Read(b, byteOff)

	var nibble int32
	if nibbleIdx%2 == 0 {
		nibble = int32(b[0] & 0xf)
	} else {
		nibble = int32(b[0] >> 4)
	}

	entry := ptAdpcmTable[ch.Scale][nibble]
	step := entry[0]
	ch.Scale = entry[1]

	sample := clampS16(step + 2*ch.Hist1 - ch.Hist2)
	ch.Hist2 = ch.Hist1
	ch.Hist1 = sample
	return int16(sample)
}

func (c *ptAdpcmCodec) BytesToSamples(bytes int64, channels int) int64 {
	const frameSize = 0x24
	if channels <= 0 || frameSize < 0x06 {
		return 0
	}
	frames := bytes / (int64(channels) * frameSize)
	return frames * int64(ptAdpcmSamplesPerFrame(frameSize))
}
