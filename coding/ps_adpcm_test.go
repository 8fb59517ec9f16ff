package coding

import (
	"testing"

	"github.com/vgmstream-go/vgmstream/streamfile"
)

func TestPSAdpcmSilentFrame(t *testing.T) {
	t.Parallel()

	// predictor 0, shift 0, flag 0, all-zero nibbles -> all-zero samples.
	frame := make([]byte, psAdpcmFrameSize)
	sf := streamfile.NewMemory("test.vag", frame)

	ch := &ChannelState{SF: sf, StartOffset: 0}
	codec := &psAdpcmCodec{}
	codec.Reset(ch)

	out := make([]int16, psAdpcmSamplesPerFrame)
	if err := codec.Decode(ch, out, 0, psAdpcmSamplesPerFrame, 1, 0); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, s := range out {
		if s != 0 {
			t.Errorf("sample %d = %d, want 0", i, s)
		}
	}
}

func TestPSAdpcmResumesAcrossPartialFrame(t *testing.T) {
	t.Parallel()

	// Two frames back to back; decoding in two short calls that split the
	// first frame must produce the same samples as one long call.
	frame := make([]byte, psAdpcmFrameSize*2)
	frame[0] = 0x10 // predictor 1, shift 0
	frame[1] = 0x00
	for i := 2; i < psAdpcmFrameSize; i++ {
		frame[i] = 0x11 // small nonzero nibbles throughout
	}
	copy(frame[psAdpcmFrameSize:], frame[:psAdpcmFrameSize])

	totalSamples := psAdpcmSamplesPerFrame * 2

	sfFull := streamfile.NewMemory("full.vag", frame)
	chFull := &ChannelState{SF: sfFull, StartOffset: 0}
	codecFull := &psAdpcmCodec{}
	codecFull.Reset(chFull)
	outFull := make([]int16, totalSamples)
	if err := codecFull.Decode(chFull, outFull, 0, totalSamples, 1, 0); err != nil {
		t.Fatalf("Decode (full): %v", err)
	}

	sfSplit := streamfile.NewMemory("split.vag", frame)
	chSplit := &ChannelState{SF: sfSplit, StartOffset: 0}
	codecSplit := &psAdpcmCodec{}
	codecSplit.Reset(chSplit)
	outSplit := make([]int16, totalSamples)
	const firstCall = 10 // splits mid-frame (frame is 28 samples)
	if err := codecSplit.Decode(chSplit, outSplit[:firstCall], 0, firstCall, 1, 0); err != nil {
		t.Fatalf("Decode (split 1): %v", err)
	}
	if err := codecSplit.Decode(chSplit, outSplit[firstCall:], 0, totalSamples-firstCall, 1, 0); err != nil {
		t.Fatalf("Decode (split 2): %v", err)
	}

	for i := range outFull {
		if outFull[i] != outSplit[i] {
			t.Fatalf("sample %d diverged: full=%d split=%d", i, outFull[i], outSplit[i])
		}
	}
}
