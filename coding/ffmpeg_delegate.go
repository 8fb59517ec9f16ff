package coding

func init() {
	Register(FFmpegDelegate, func() Codec { return &ffmpegDelegateCodec{} })
}

// ffmpegDelegateCodec is the placeholder for codec families this module
// doesn't implement natively and has no pure-Go library for either (MP3
// in some containers, AAC, XMA2, ATRAC3/9, WMA). Real vgmstream shells
// out to libavcodec for these; this module has no such dependency
// available in the example corpus, so format parsers that would need it
// report ErrUnsupportedFeature at open time instead of registering a
// Stream that silently produces silence.
type ffmpegDelegateCodec struct{}

func (c *ffmpegDelegateCodec) Decode(ch *ChannelState, out []int16, firstSample, samplesToDo, channels, channelIndex int) error {
	return ErrUnsupportedCodec
}

func (c *ffmpegDelegateCodec) BytesToSamples(bytes int64, channels int) int64 {
	return 0
}
