package meta

import (
	"encoding/binary"
	"testing"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

// mkSingleSegmentOggPage builds one Ogg page holding exactly one segment
// (data must be under 255 bytes), with the given granule position low
// 32 bits at the standard 0x06 offset.
func mkSingleSegmentOggPage(granule uint32, data []byte) []byte {
	page := make([]byte, 0x1b+1+len(data))
	copy(page[0:], "OggS")
	binary.LittleEndian.PutUint32(page[0x06:], granule)
	page[0x1a] = 1         // segment count
	page[0x1b] = byte(len(data))
	copy(page[0x1c:], data)
	return page
}

func mkOpusHeadData(channels byte) []byte {
	data := make([]byte, 19)
	copy(data[0:], "OpusHead")
	data[8] = 1 // version
	data[9] = channels
	return data
}

func mkOpusTagsData(comments []string) []byte {
	var data []byte
	data = append(data, "OpusTags"...)
	vendor := make([]byte, 4) // vendorSize = 0
	data = append(data, vendor...)
	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(comments)))
	data = append(data, countBuf...)
	for _, c := range comments {
		sizeBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(sizeBuf, uint32(len(c)))
		data = append(data, sizeBuf...)
		data = append(data, c...)
	}
	return data
}

// buildOggOpus assembles a minimal valid Ogg Opus file: an OpusHead page,
// an OpusTags page (carrying the given vendor comments), then a final
// page whose granule position is the total sample count.
func buildOggOpus(channels byte, comments []string, finalGranule uint32) []byte {
	headPage := mkSingleSegmentOggPage(0, mkOpusHeadData(channels))
	tagsPage := mkSingleSegmentOggPage(0, mkOpusTagsData(comments))
	finalPage := make([]byte, 0x1a)
	copy(finalPage[0:], "OggS")
	binary.LittleEndian.PutUint32(finalPage[0x06:], finalGranule)

	buf := append([]byte{}, headPage...)
	buf = append(buf, tagsPage...)
	buf = append(buf, finalPage...)
	return buf
}

func TestOggOpusParserBasic(t *testing.T) {
	t.Parallel()

	data := buildOggOpus(2, []string{"LOOP_START=100", "LOOP_END=5000"}, 48000)
	sf := streamfile.NewMemory("test.opus", data)

	res, err := (oggOpusParser{}).ProbeAndOpen(sf, 1)
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
		t.Errorf("SampleRate = %d, want 48000 (Opus always decodes at 48kHz)", res.SampleRate)
	}
	if res.NumSamples != 48000 {
		t.Errorf("NumSamples = %d, want 48000 (from the final page's granule)", res.NumSamples)
	}
	if !res.LoopFlag {
		t.Error("expected LoopFlag = true from LOOP_START/LOOP_END comments")
	}
	if res.LoopStart != 100 || res.LoopEnd != 5000 {
		t.Errorf("LoopStart/LoopEnd = %d/%d, want 100/5000", res.LoopStart, res.LoopEnd)
	}
	if res.CodecType != coding.OpusDelegate {
		t.Errorf("CodecType = %v, want OpusDelegate", res.CodecType)
	}
	if res.PostOpen == nil {
		t.Fatal("expected a non-nil PostOpen hook")
	}

	ch := &coding.ChannelState{}
	if err := res.PostOpen([]*coding.ChannelState{ch}); err != nil {
		t.Fatalf("PostOpen: %v", err)
	}
	if ch.Extra == nil {
		t.Error("expected PostOpen to install ogg-page framing into ch.Extra")
	}
}

func TestOggOpusParserRecognizesLoopsRangeSpelling(t *testing.T) {
	t.Parallel()

	data := buildOggOpus(1, []string{"loops=10-2000"}, 2000)
	sf := streamfile.NewMemory("test.opus", data)

	res, err := (oggOpusParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res == nil {
		t.Fatal("expected a match, got nil")
	}
	if !res.LoopFlag {
		t.Error("expected LoopFlag = true from loops= comment")
	}
	if res.LoopStart != 10 || res.LoopEnd != 2000 {
		t.Errorf("LoopStart/LoopEnd = %d/%d, want 10/2000", res.LoopStart, res.LoopEnd)
	}
}

func TestOggOpusParserNoLoopCommentsMeansNoLoop(t *testing.T) {
	t.Parallel()

	data := buildOggOpus(2, nil, 48000)
	sf := streamfile.NewMemory("test.opus", data)

	res, err := (oggOpusParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res == nil {
		t.Fatal("expected a match, got nil")
	}
	if res.LoopFlag {
		t.Error("expected LoopFlag = false with no loop comments present")
	}
}

func TestOggOpusParserRejectsMissingMagic(t *testing.T) {
	t.Parallel()

	data := buildOggOpus(2, nil, 48000)
	copy(data[0:4], "XXXX")
	sf := streamfile.NewMemory("test.opus", data)

	res, err := (oggOpusParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil for a file that doesn't start with an Ogg page")
	}
}

func TestOggOpusParserRejectsNonOpusHead(t *testing.T) {
	t.Parallel()

	headPage := mkSingleSegmentOggPage(0, []byte("not an opus head at all.."))
	sf := streamfile.NewMemory("test.opus", headPage)

	res, err := (oggOpusParser{}).ProbeAndOpen(sf, 1)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil when the first page isn't OpusHead")
	}
}

func TestOggOpusParserRejectsOtherSubsong(t *testing.T) {
	t.Parallel()

	data := buildOggOpus(2, nil, 48000)
	sf := streamfile.NewMemory("test.opus", data)

	res, err := (oggOpusParser{}).ProbeAndOpen(sf, 2)
	if err != nil {
		t.Fatalf("ProbeAndOpen: %v", err)
	}
	if res != nil {
		t.Fatal("Ogg Opus has no subsongs, expected nil for index != 1")
	}
}

func TestOggPageSizeComputesDataOffsetAndPageSize(t *testing.T) {
	t.Parallel()

	page := mkSingleSegmentOggPage(0, []byte{1, 2, 3, 4, 5})
	sf := streamfile.NewMemory("test.opus", page)

	dataOff, pageSize, ok := oggPageSize(sf, 0)
	if !ok {
		t.Fatal("oggPageSize returned ok=false")
	}
	if dataOff != 0x1c {
		t.Errorf("dataOff = %#x, want 0x1c", dataOff)
	}
	if pageSize != int64(len(page)) {
		t.Errorf("pageSize = %d, want %d", pageSize, len(page))
	}
}
