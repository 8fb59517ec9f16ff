package coding

import (
	"testing"

	"github.com/vgmstream-go/vgmstream/streamfile"
)

func TestCircusAccumulatesShiftedDelta(t *testing.T) {
	t.Parallel()

	data := []byte{5, 5, 0x80, 3} // 0x80 = int8(-128), saturating
	sf := streamfile.NewMemory("test.pcm", data)
	ch := &ChannelState{SF: sf, StartOffset: 0}
	codec := &circusCodec{}
	codec.Reset(ch)

	out := make([]int16, 4)
	if err := codec.Decode(ch, out, 0, 4, 1, 0); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []int16{5, 10, -118, -112}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("sample %d = %d, want %d", i, out[i], w)
		}
	}
}

func TestCircusZeroCodeDecaysScale(t *testing.T) {
	t.Parallel()

	// Saturate once to raise scale to 1, then a zero code decays it back
	// to 0 without touching hist.
	data := []byte{0x80, 0}
	sf := streamfile.NewMemory("test.pcm", data)
	ch := &ChannelState{SF: sf, StartOffset: 0}
	codec := &circusCodec{}
	codec.Reset(ch)

	out := make([]int16, 2)
	if err := codec.Decode(ch, out, 0, 2, 1, 0); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out[0] != -128 {
		t.Errorf("out[0] = %d, want -128", out[0])
	}
	if out[1] != -128 {
		t.Errorf("out[1] = %d, want -128 (zero code adds nothing)", out[1])
	}
	if ch.Scale != 0 {
		t.Errorf("Scale = %d, want 0 (decayed back down after the zero code)", ch.Scale)
	}
}

func TestCircusResumesAcrossPartialCall(t *testing.T) {
	t.Parallel()

	data := []byte{5, 5, 0x80, 3}

	sfFull := streamfile.NewMemory("full.pcm", data)
	chFull := &ChannelState{SF: sfFull, StartOffset: 0}
	codecFull := &circusCodec{}
	codecFull.Reset(chFull)
	outFull := make([]int16, 4)
	if err := codecFull.Decode(chFull, outFull, 0, 4, 1, 0); err != nil {
		t.Fatalf("Decode (full): %v", err)
	}

	sfSplit := streamfile.NewMemory("split.pcm", data)
	chSplit := &ChannelState{SF: sfSplit, StartOffset: 0}
	codecSplit := &circusCodec{}
	codecSplit.Reset(chSplit)
	outSplit := make([]int16, 4)
	if err := codecSplit.Decode(chSplit, outSplit[:2], 0, 2, 1, 0); err != nil {
		t.Fatalf("Decode (split 1): %v", err)
	}
	if err := codecSplit.Decode(chSplit, outSplit[2:], 0, 2, 1, 0); err != nil {
		t.Fatalf("Decode (split 2): %v", err)
	}

	for i := range outFull {
		if outFull[i] != outSplit[i] {
			t.Fatalf("sample %d diverged: full=%d split=%d", i, outFull[i], outSplit[i])
		}
	}
}

func TestCircusBytesToSamples(t *testing.T) {
	t.Parallel()

	if got := (&circusCodec{}).BytesToSamples(20, 2); got != 10 {
		t.Errorf("BytesToSamples(20, 2) = %d, want 10", got)
	}
	if got := (&circusCodec{}).BytesToSamples(20, 0); got != 0 {
		t.Errorf("BytesToSamples(20, 0) = %d, want 0", got)
	}
}
