package meta

import (
	"encoding/binary"
	"testing"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

// buildHCAHeader lays out "HCA\0", header_size, and a 16-byte "fmt\0" chunk
// (channels, 24-bit sample rate, block count), with no further chunks.
func buildHCAHeader(channels byte, sampleRate uint32, blockCount uint32) []byte {
	const headerSize = 0x18
	buf := make([]byte, headerSize)
	copy(buf[0:], "HCA\x00")
	binary.BigEndian.PutUint16(buf[6:], uint16(headerSize))
	copy(buf[8:], "fmt\x00")
	buf[0x0c] = channels
	buf[0x0d] = byte(sampleRate >> 16)
	buf[0x0e] = byte(sampleRate >> 8)
	buf[0x0f] = byte(sampleRate)
	binary.BigEndian.PutUint32(buf[0x10:], blockCount)
	return buf
}

func TestHCAParserWithKeystring(t *testing.T) {
	t.Parallel()

	data := buildHCAHeader(2, 44100, 10)
	sf := streamfile.NewMemory("test.hca", data)

	SetKeystring("mituba")
	res, err := (hcaParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res == nil {
		t.Fatal("expected a match, got nil")
	}
	if res.Channels != 2 {
		t.Errorf("Channels = %d, want 2", res.Channels)
	}
	if res.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", res.SampleRate)
	}
	if res.NumSamples != 10*coding.HCABlockSamples {
		t.Errorf("NumSamples = %d, want %d", res.NumSamples, 10*coding.HCABlockSamples)
	}
	if res.StartOffset != 0x18 {
		t.Errorf("StartOffset = %#x, want 0x18", res.StartOffset)
	}
	if res.CodecType != coding.HCA {
		t.Errorf("CodecType = %v, want HCA", res.CodecType)
	}
	if res.LoopFlag {
		t.Error("expected LoopFlag = false, no loop chunk present")
	}
	if res.PostOpen == nil {
		t.Fatal("expected a non-nil PostOpen hook")
	}

	ch := &coding.ChannelState{}
	if err := res.PostOpen([]*coding.ChannelState{ch}); err != nil {
		t.Fatalf("PostOpen: %v", err)
	}
	if ch.Extra == nil {
		t.Error("expected PostOpen to install HCA decode state into ch.Extra")
	}

	// SetKeystring is single-shot: the pending hint must be cleared so a
	// later open without one doesn't accidentally reuse it.
	if pendingKeystring != "" {
		t.Errorf("pendingKeystring = %q, want cleared after use", pendingKeystring)
	}
}

func TestHCAParserWithLoopChunk(t *testing.T) {
	t.Parallel()

	base := buildHCAHeader(1, 22050, 5)
	loop := make([]byte, 16)
	copy(loop[0:], "loop")
	binary.BigEndian.PutUint32(loop[4:], 1) // loop start block
	binary.BigEndian.PutUint32(loop[8:], 3) // loop end block
	data := append(base, loop...)
	binary.BigEndian.PutUint16(data[6:], uint16(len(data))) // header_size now covers the loop chunk

	sf := streamfile.NewMemory("test.hca", data)
	res, err := (hcaParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res == nil {
		t.Fatal("expected a match, got nil")
	}
	if !res.LoopFlag {
		t.Error("expected LoopFlag = true")
	}
	if res.LoopStart != 1*coding.HCABlockSamples {
		t.Errorf("LoopStart = %d, want %d", res.LoopStart, 1*coding.HCABlockSamples)
	}
	if res.LoopEnd != 3*coding.HCABlockSamples {
		t.Errorf("LoopEnd = %d, want %d", res.LoopEnd, 3*coding.HCABlockSamples)
	}
}

func TestHCAParserRejectsWrongMagic(t *testing.T) {
	t.Parallel()

	data := buildHCAHeader(2, 44100, 10)
	copy(data[0:4], "XXX\x00")
	sf := streamfile.NewMemory("test.hca", data)

	res, err := (hcaParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil for non-HCA magic")
	}
}

func TestHCAParserRejectsBadFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"zero channels", buildHCAHeader(0, 44100, 10)},
		{"too many channels", buildHCAHeader(17, 44100, 10)},
		{"zero block count", buildHCAHeader(2, 44100, 0)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sf := streamfile.NewMemory("test.hca", tt.data)
			res, err := (hcaParser{}).ProbeAndOpen(sf, 1)
			if err != nil {
				t.Fatalf("ProbeAndOpen: %v", err)
			}
			if res != nil {
				t.Fatalf("expected rejection for %s", tt.name)
			}
		})
	}
}

func TestHCAParserRejectsOtherSubsong(t *testing.T) {
	t.Parallel()

	data := buildHCAHeader(2, 44100, 10)
	sf := streamfile.NewMemory("test.hca", data)

	res, err := (hcaParser{}).ProbeAndOpen(sf, 2)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("HCA has no subsongs, expected nil for index != 1")
	}
}

func TestKeystringToKeyIsDeterministic(t *testing.T) {
	t.Parallel()

	if keystringToKey("") != 0 {
		t.Error("empty keystring should map to key 0")
	}
	a := keystringToKey("mituba")
	b := keystringToKey("mituba")
	if a != b {
		t.Error("keystringToKey should be deterministic for the same input")
	}
	if a == 0 {
		t.Error("a non-empty keystring should not map to key 0")
	}
}
