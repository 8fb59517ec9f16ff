package meta

import (
	"encoding/binary"
	"testing"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

func buildLOPU(startOffset uint32, sampleRate int32, channels int16, numSamples, loopStart, loopEndMinus1 int32, skip int16, dataSize uint32) []byte {
	buf := make([]byte, startOffset)
	copy(buf[0x00:], "LOPU")
	binary.LittleEndian.PutUint32(buf[0x04:], startOffset)
	binary.LittleEndian.PutUint32(buf[0x08:], uint32(sampleRate))
	binary.LittleEndian.PutUint16(buf[0x0c:], uint16(channels))
	binary.LittleEndian.PutUint32(buf[0x14:], uint32(numSamples))
	binary.LittleEndian.PutUint32(buf[0x18:], uint32(loopStart))
	binary.LittleEndian.PutUint32(buf[0x1c:], uint32(loopEndMinus1))
	binary.LittleEndian.PutUint16(buf[0x24:], uint16(skip))
	binary.LittleEndian.PutUint32(buf[0x28:], dataSize)
	return buf
}

func TestLOPUParserBasic(t *testing.T) {
	t.Parallel()

	// loop_end field stores (end - 1), skip trims from num_samples.
	data := buildLOPU(0x40, 48000, 2, 20000, 0, 18999, 100, 0x2000)
	sf := streamfile.NewMemory("test.lopus", data)

	res, err := (lopuFbParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res == nil {
		t.Fatal("expected a match, got nil")
	}
	if res.Channels != 2 {
		t.Errorf("Channels = %d, want 2", res.Channels)
	}
	if res.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", res.SampleRate)
	}
	if res.NumSamples != 20000-100 {
		t.Errorf("NumSamples = %d, want %d", res.NumSamples, 20000-100)
	}
	if res.LoopEnd != 19000 {
		t.Errorf("LoopEnd = %d, want 19000", res.LoopEnd)
	}
	if !res.LoopFlag {
		t.Error("expected LoopFlag true")
	}
	if res.StartOffset != 0x40 {
		t.Errorf("StartOffset = %#x, want 0x40", res.StartOffset)
	}
	if res.CodecType != coding.OpusDelegate {
		t.Errorf("CodecType = %v, want OpusDelegate", res.CodecType)
	}
}

func TestLOPUParserClampsShortNumSamplesToLoopEnd(t *testing.T) {
	t.Parallel()

	// num_samples-skip (900) would be below loop_end (1000): must clamp up.
	data := buildLOPU(0x40, 48000, 2, 1000, 0, 999, 100, 0x2000)
	sf := streamfile.NewMemory("test.lopus", data)

	res, err := (lopuFbParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res == nil {
		t.Fatal("expected a match, got nil")
	}
	if res.NumSamples != 1000 {
		t.Errorf("NumSamples = %d, want clamped to loop_end 1000", res.NumSamples)
	}
}

func TestLOPUParserRejectsWrongMagic(t *testing.T) {
	t.Parallel()

	data := buildLOPU(0x40, 48000, 2, 20000, 0, 19999, 0, 0x2000)
	copy(data[0:4], "XXXX")
	sf := streamfile.NewMemory("test.lopus", data)

	res, err := (lopuFbParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil for non-LOPU magic")
	}
}
