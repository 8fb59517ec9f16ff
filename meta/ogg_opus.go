package meta

import (
	"strconv"
	"strings"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&oggOpusParser{}, []string{"opus", "lopus", "ogg", "logg", "bgm"}, []string{"opus", "ogg"})
}

// oggOpusParser reads a standard Ogg-contained Opus stream, ported from
// ogg_opus.c: an "OpusHead" identification page, a mandatory "OpusTags"
// comment page (scanned for LOOP_START/LOOP_END/loops=/loopstart=/
// loopend= vendor comments, every spelling ogg_opus.c itself checks), then
// raw Opus audio pages. Opus always decodes at 48kHz regardless of the
// stream's original encoder input rate.
type oggOpusParser struct{}

func (oggOpusParser) Name() string { return "Ogg Opus" }

func (oggOpusParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}
	if !fields.IsID32BE(sf, 0, "OggS") {
		return nil, nil
	}

	headDataOff, headPageSize, ok := oggPageSize(sf, 0)
	if !ok {
		return nil, nil
	}
	if !fields.IsID32BE(sf, headDataOff, "Opus") || !fields.IsID32BE(sf, headDataOff+4, "Head") {
		return nil, nil
	}
	channels := int(fields.U8(sf, headDataOff+9))

	tagsPageOffset := int64(headPageSize)
	tagsDataOff, tagsPageSize, ok := oggPageSize(sf, tagsPageOffset)
	if !ok {
		return nil, nil
	}
	if !fields.IsID32BE(sf, tagsDataOff, "Opus") || !fields.IsID32BE(sf, tagsDataOff+4, "Tags") {
		return nil, nil
	}

	loopFlag, loopStart, loopEnd := parseOpusComments(sf, tagsDataOff)

	startOffset := tagsPageOffset + int64(tagsPageSize)
	numSamples := oggLastGranule(sf, 0)

	if channels <= 0 || channels > 8 {
		return nil, nil
	}

	res := &ParseResult{
		Channels:    channels,
		SampleRate:  48000,
		NumSamples:  numSamples,
		LoopFlag:    loopFlag,
		LoopStart:   loopStart,
		LoopEnd:     loopEnd,
		StartOffset: startOffset,
		CodecType:   coding.OpusDelegate,
		Layout:      layout.None{},
	}
	res.PostOpen = func(chans []*coding.ChannelState) error {
		for _, ch := range chans {
			ch.Extra = coding.NewOggOpusFraming()
		}
		return nil
	}
	return res, nil
}

// oggPageSize walks one Ogg page's segment table (ogg_opus.c's
// get_ogg_page_size): segment count at 0x1a, that many lacing-value
// bytes at 0x1b, total page size = 0x1b + segments + sum(segment sizes).
func oggPageSize(sf streamfile.Streamfile, pageOffset int64) (dataOffset int64, pageSize int64, ok bool) {
	if !fields.IsID32BE(sf, pageOffset, "OggS") {
		return 0, 0, false
	}
	segments := int64(fields.U8(sf, pageOffset+0x1a))
	var sum int64
	for i := int64(0); i < segments; i++ {
		sum += int64(fields.U8(sf, pageOffset+0x1b+i))
	}
	pageSize = 0x1b + segments + sum
	dataOffset = pageOffset + 0x1b + segments
	return dataOffset, pageSize, true
}

// oggLastGranule scans backward from near the end of the file for the
// final page's "OggS" magic and reads its granule position's low 32
// bits (the total sample count), ported from ogg_opus.c's
// ogg_get_num_samples: Ogg carries no up-front sample count, only a
// running granule position per page.
func oggLastGranule(sf streamfile.Streamfile, startOffset int64) int64 {
	size := sf.Size()
	offset := size - 0x1a
	for offset >= startOffset {
		if fields.IsID32BE(sf, offset, "OggS") {
			return int64(fields.U32LE(sf, offset+0x06))
		}
		offset--
	}
	return 0
}

// parseOpusComments scans an OpusTags page's vendor comment list for the
// loop-marking spellings ogg_opus.c itself recognizes across titles.
func parseOpusComments(sf streamfile.Streamfile, tagsDataOff int64) (loopFlag bool, loopStart, loopEnd int64) {
	vendorSize := int64(fields.S32LE(sf, tagsDataOff+0x08))
	commentCountOff := tagsDataOff + 0x0c + vendorSize
	commentCount := int(fields.S32LE(sf, commentCountOff))
	if commentCount < 0 || commentCount > 1024 {
		return false, 0, 0
	}

	offset := commentCountOff + 0x04
	haveStart, haveEnd := false, false
	for i := 0; i < commentCount; i++ {
		size := int(fields.S32LE(sf, offset))
		if size < 0 || size > 1024 {
			break
		}
		comment := fields.ReadString(sf, offset+0x04, size)
		if v, ok := opusLoopValue(comment, "LOOP_START="); ok {
			loopStart, haveStart = v, true
		} else if v, ok := opusLoopValue(comment, "LoopStart="); ok {
			loopStart, haveStart = v, true
		} else if v, ok := opusLoopValue(comment, "loopstart="); ok {
			loopStart, haveStart = v, true
		} else if v, ok := opusLoopValue(comment, "LOOP_END="); ok {
			loopEnd, haveEnd = v, true
		} else if v, ok := opusLoopValue(comment, "LoopEnd="); ok {
			loopEnd, haveEnd = v, true
		} else if v, ok := opusLoopValue(comment, "loopend="); ok {
			loopEnd, haveEnd = v, true
		} else if rest, ok := strings.CutPrefix(comment, "loops="); ok {
			if s, e, ok := splitLoopsRange(rest); ok {
				loopStart, loopEnd, haveStart, haveEnd = s, e, true, true
			}
		}
		offset += 0x04 + int64(size)
	}
	return haveStart, loopStart, loopEnd
}

func opusLoopValue(comment, prefix string) (int64, bool) {
	if !strings.HasPrefix(comment, prefix) {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimPrefix(comment, prefix), 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func splitLoopsRange(s string) (start, end int64, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err1 := strconv.ParseInt(parts[0], 10, 64)
	b, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return a, b, true
}
