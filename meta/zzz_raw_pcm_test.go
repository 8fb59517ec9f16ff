package meta

import (
	"testing"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

func TestRawPCMParserClaimsIntExtension(t *testing.T) {
	t.Parallel()

	data := make([]byte, 16*2*2) // 16 stereo 16-bit frames
	sf := streamfile.NewMemory("test.int", data)

	res, err := (rawPCMParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res == nil {
		t.Fatal("expected a match for a .int file")
	}
	if res.Channels != 2 {
		t.Errorf("Channels = %d, want 2", res.Channels)
	}
	if res.SampleRate != rawPCMSampleRate {
		t.Errorf("SampleRate = %d, want %d", res.SampleRate, rawPCMSampleRate)
	}
	if res.NumSamples != 16 {
		t.Errorf("NumSamples = %d, want 16", res.NumSamples)
	}
	if res.CodecType != coding.PCM16LE {
		t.Errorf("CodecType = %v, want PCM16LE", res.CodecType)
	}
	inter, ok := res.Layout.(layout.Interleave)
	if !ok || inter.BlockSize != 2 || inter.Channels != 2 {
		t.Errorf("Layout = %+v, want Interleave{BlockSize:2 Channels:2}", res.Layout)
	}
}

func TestRawPCMParserIgnoresUnrelatedExtension(t *testing.T) {
	t.Parallel()

	data := make([]byte, 64)
	sf := streamfile.NewMemory("test.wav", data)

	res, err := (rawPCMParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil for a non .int/.raw extension")
	}
}

func TestRawPCMParserRejectsMisnamedPSADPCM(t *testing.T) {
	t.Parallel()

	// A .int file whose first 16-byte frame looks like a real PS-ADPCM
	// frame (low predictor nibble, a known loop-flag byte) must be
	// rejected so it doesn't get hijacked as raw PCM.
	data := make([]byte, 64)
	data[0] = 0x20 // predictor nibble 2
	data[1] = coding.PSFlagLoopStart
	sf := streamfile.NewMemory("test.int", data)

	res, err := (rawPCMParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil for a PS-ADPCM-shaped leading frame")
	}
}

func TestRawPCMParserRejectsUnevenByteCount(t *testing.T) {
	t.Parallel()

	data := make([]byte, 5) // not a multiple of channels*2
	sf := streamfile.NewMemory("test.raw", data)

	res, err := (rawPCMParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil for a size that doesn't divide evenly")
	}
}

func TestRawPCMParserRejectsOtherSubsong(t *testing.T) {
	t.Parallel()

	data := make([]byte, 64)
	sf := streamfile.NewMemory("test.int", data)

	res, err := (rawPCMParser{}).ProbeAndOpen(sf, 2)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("raw PCM has no subsongs, expected nil for index != 1")
	}
}
