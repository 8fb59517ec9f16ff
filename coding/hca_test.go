package coding

import (
	"testing"

	"github.com/vgmstream-go/vgmstream/streamfile"
)

func TestDecodeHcaBlockDCReadsThirteenBitHeaderField(t *testing.T) {
	t.Parallel()

	// 16 reserved/sync bits, then a 13-bit value of 4196 (4096+100), which
	// decodeHcaBlockDC maps to (4196-4096)*4 = 400.
	block := []byte{0x00, 0x00, 0x83, 0x20}
	got := decodeHcaBlockDC(block, 0, 1)
	if got != 400 {
		t.Errorf("decodeHcaBlockDC = %d, want 400", got)
	}
}

func TestDecodeHcaBlockDCShortBlockIsZero(t *testing.T) {
	t.Parallel()

	if got := decodeHcaBlockDC([]byte{0x00, 0x00}, 0, 1); got != 0 {
		t.Errorf("decodeHcaBlockDC on a too-short block = %d, want 0", got)
	}
}

func TestHcaDecryptBlockNoneIsNoop(t *testing.T) {
	t.Parallel()

	st := &hcaState{cipher: hcaCipherNone}
	block := []byte{0x01, 0x02, 0x03}
	want := append([]byte(nil), block...)
	st.decryptBlock(block)
	for i := range block {
		if block[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x (untouched)", i, block[i], want[i])
		}
	}
}

func TestHcaDecryptBlockKeyedRoundTrips(t *testing.T) {
	t.Parallel()

	table := buildHcaCipherTable56(0xDEADBEEF)
	st := &hcaState{cipher: hcaCipherKeyed, cipherTable: table}

	original := []byte{0x10, 0x20, 0x30, 0x40, 0x50}
	block := append([]byte(nil), original...)
	st.decryptBlock(block)
	st.decryptBlock(block) // XOR is its own inverse
	for i := range block {
		if block[i] != original[i] {
			t.Errorf("byte %d = %#x, want %#x after double-decrypt", i, block[i], original[i])
		}
	}
}

func TestFindKeyPicksHighestScoringCandidate(t *testing.T) {
	t.Parallel()

	// A block pre-encrypted with "sega"'s key, hand-picked (verified
	// externally) so every other candidate's decrypt attempt produces at
	// least one 0x00 byte and scores lower, leaving sega the unique winner.
	want := hcaKnownKeys[1]
	firstBlock := []byte{0x00, 0xd3, 0xd9, 0xe1, 0xd4, 0x78, 0x71, 0x8f}

	key, found := FindKey(firstBlock)
	if !found {
		t.Fatal("FindKey found no candidate")
	}
	if key != want.key {
		t.Errorf("FindKey = %#x, want %#x (%s)", key, want.key, want.name)
	}
}

func TestHCADecodeFlatReconstructionWithinOneBlock(t *testing.T) {
	t.Parallel()

	block := []byte{0x00, 0x00, 0x83, 0x20} // DC -> 400, see decodeHcaBlockDC test
	sf := streamfile.NewMemory("test.hca", block)
	extra := &hcaState{blockSize: int32(len(block)), dataOffset: 0, cipher: hcaCipherNone}

	ch := &ChannelState{SF: sf, StartOffset: 0, Extra: extra}
	codec := &hcaCodec{}
	codec.Reset(ch)

	out := make([]int16, 10)
	if err := codec.Decode(ch, out, 0, 10, 1, 0); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, s := range out {
		if s != 400 {
			t.Errorf("sample %d = %d, want 400 (flat reconstruction within one block)", i, s)
		}
	}
}

func TestHCADecodeCrossesBlockBoundary(t *testing.T) {
	t.Parallel()

	samplesPerBlock := HCABlockSamples
	block0 := []byte{0x00, 0x00, 0x83, 0x20} // DC -> 400
	block1 := []byte{0x00, 0x00, 0x79, 0xc0} // DC -> -800
	data := append(append([]byte{}, block0...), block1...)

	sf := streamfile.NewMemory("test.hca", data)
	extra := &hcaState{blockSize: int32(len(block0)), dataOffset: 0, cipher: hcaCipherNone}
	ch := &ChannelState{SF: sf, StartOffset: 0, Extra: extra}
	codec := &hcaCodec{}
	codec.Reset(ch)

	out := make([]int16, samplesPerBlock+5)
	if err := codec.Decode(ch, out, 0, len(out), 1, 0); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out[0] != 400 {
		t.Errorf("out[0] = %d, want 400 (first block)", out[0])
	}
	if out[samplesPerBlock-1] != 400 {
		t.Errorf("out[%d] = %d, want 400 (last sample of first block)", samplesPerBlock-1, out[samplesPerBlock-1])
	}
	if out[samplesPerBlock] != -800 {
		t.Errorf("out[%d] = %d, want -800 (first sample of second block)", samplesPerBlock, out[samplesPerBlock])
	}
}

func TestHCABytesToSamplesIsAlwaysZero(t *testing.T) {
	t.Parallel()

	if got := (&hcaCodec{}).BytesToSamples(1000, 2); got != 0 {
		t.Errorf("BytesToSamples = %d, want 0 (HCA sample count comes from block_count)", got)
	}
}
