package coding

import (
	"errors"
	"io"
	"testing"

	"github.com/vgmstream-go/vgmstream/streamfile"
)

func TestSfReaderReturnsEOFOnZeroByteRead(t *testing.T) {
	t.Parallel()

	sf := streamfile.NewMemory("test.flac", []byte{1, 2, 3})
	r := streamfileReaderAt(sf, 3) // past the end of the 3-byte payload

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestSfReaderReadsSequentially(t *testing.T) {
	t.Parallel()

	sf := streamfile.NewMemory("test.flac", []byte{1, 2, 3, 4, 5})
	r := streamfileReaderAt(sf, 0)

	first := make([]byte, 3)
	n, err := r.Read(first)
	if err != nil {
		t.Fatalf("first Read: %v", err)
	}
	if n != 3 || first[0] != 1 || first[1] != 2 || first[2] != 3 {
		t.Errorf("first = %v, want [1 2 3]", first[:n])
	}

	second := make([]byte, 3)
	n, err = r.Read(second)
	if err != nil {
		t.Fatalf("second Read: %v", err)
	}
	if n != 2 || second[0] != 4 || second[1] != 5 {
		t.Errorf("second = %v, want [4 5]", second[:n])
	}
}

func TestFlacDelegateDecodeRejectsNonFlacStream(t *testing.T) {
	t.Parallel()

	// Not a FLAC stream (missing "fLaC" magic): flac.New must fail, which
	// the codec surfaces as ErrDecodeTransient rather than panicking.
	sf := streamfile.NewMemory("test.flac", []byte{0x00, 0x01, 0x02, 0x03})
	ch := &ChannelState{SF: sf, StartOffset: 0}
	codec := &flacDelegateCodec{}
	codec.Reset(ch)

	out := make([]int16, 4)
	err := codec.Decode(ch, out, 0, 4, 1, 0)
	if !errors.Is(err, ErrDecodeTransient) {
		t.Errorf("Decode err = %v, want ErrDecodeTransient", err)
	}
}

func TestFlacDelegateResetClearsState(t *testing.T) {
	t.Parallel()

	sf := streamfile.NewMemory("test.flac", []byte{1, 2, 3})
	ch := &ChannelState{SF: sf, StartOffset: 0, Offset: 99, Extra: &flacDelegateState{}}
	codec := &flacDelegateCodec{}
	codec.Reset(ch)

	if ch.Offset != ch.StartOffset {
		t.Errorf("Offset = %d, want %d (reset to StartOffset)", ch.Offset, ch.StartOffset)
	}
	if ch.Extra != nil {
		t.Errorf("Extra = %v, want nil after Reset", ch.Extra)
	}
}

func TestFlacDelegateBytesToSamplesIsAlwaysZero(t *testing.T) {
	t.Parallel()

	if got := (&flacDelegateCodec{}).BytesToSamples(1000, 2); got != 0 {
		t.Errorf("BytesToSamples = %d, want 0 (FLAC sample count comes from STREAMINFO)", got)
	}
}
