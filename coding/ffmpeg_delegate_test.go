package coding

import (
	"errors"
	"testing"
)

func TestFFmpegDelegateDecodeAlwaysReportsUnsupported(t *testing.T) {
	t.Parallel()

	codec := &ffmpegDelegateCodec{}
	ch := &ChannelState{}
	out := make([]int16, 4)
	err := codec.Decode(ch, out, 0, 4, 1, 0)
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("Decode err = %v, want ErrUnsupportedCodec", err)
	}
}

func TestFFmpegDelegateBytesToSamplesIsAlwaysZero(t *testing.T) {
	t.Parallel()

	if got := (&ffmpegDelegateCodec{}).BytesToSamples(1000, 2); got != 0 {
		t.Errorf("BytesToSamples = %d, want 0", got)
	}
}
