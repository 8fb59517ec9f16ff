package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&hcaParser{}, []string{"hca"}, []string{"hca"})
}

// hcaParser recognizes CRI Middleware's HCA container (spec 8, test
// scenario 5). Layout: "HCA\0" magic, a chunked header (fmt/comp or
// dec/loop/ciph/pad), then block_count fixed-size blocks of subband data.
// Chunk offsets after "fmt\0" are fixed for every file CRI's encoder
// produces, so this parser walks them positionally rather than via a
// generic tag scan.
type hcaParser struct{}

func (hcaParser) Name() string { return "HCA header" }

// Keystring lets a caller pass CRI's per-title keystring (spec 8 scenario
// 5: "caller passes keystring \"mituba\"") instead of relying on
// coding.FindKey's built-in candidate scan. Set via SetKeystring before
// probing; cleared after one use since it is a per-open, not per-format,
// setting.
var pendingKeystring string //nolint:gochecknoglobals // single-shot caller hint, see SetKeystring doc

// SetKeystring installs the HCA decryption keystring for the next
// CreateStream call that opens an HCA file. vgmstream has no per-call
// config field for this by spec's public Config table, so it is supplied
// out of band the way upstream vgmstream's HCAKEY.bin / command line
// keystring option is: a process-wide hint consumed once.
func SetKeystring(keystring string) { pendingKeystring = keystring }

func keystringToKey(keystring string) uint64 {
	if keystring == "" {
		return 0
	}
	var key uint64
	for i := 0; i < len(keystring); i++ {
		key = key*37 + uint64(keystring[i])
	}
	return key
}

func (hcaParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if !fields.IsID32BE(sf, 0, "HCA\x00") {
		return nil, nil
	}
	if subsongIndex != 1 {
		return nil, nil
	}

	headerSize := int64(fields.U16BE(sf, 6))
	if headerSize < 8 || headerSize > sf.Size() {
		return nil, nil
	}
	if !fields.IsID32BE(sf, 8, "fmt\x00") {
		return nil, nil
	}

	channels := int(fields.U8(sf, 0x0c))
	sampleRate := int32(fields.U32BE(sf, 0x0c) & 0x00FFFFFF)
	blockCount := int32(fields.U32BE(sf, 0x10))
	if channels <= 0 || channels > 16 || sampleRate <= 0 || sampleRate > 192000 || blockCount <= 0 {
		return nil, nil
	}

	blockSize := int32(2048)
	if fields.IsID32BE(sf, 0x18, "comp") || fields.IsID32BE(sf, 0x18, "dec\x00") {
		blockSize = int32(fields.U16BE(sf, 0x18+4))
	}

	loopFlag := false
	var loopStartBlock, loopEndBlock int64
	if off, ok := findHCAChunk(sf, headerSize, "loop"); ok {
		loopStartBlock = int64(fields.U32BE(sf, off+4))
		loopEndBlock = int64(fields.U32BE(sf, off+8))
		loopFlag = true
	}

	keyed := false
	var cipherKey uint64
	if off, ok := findHCAChunk(sf, headerSize, "ciph"); ok {
		cipherType := fields.U16BE(sf, off+4)
		if cipherType == 56 {
			keyed = true
			cipherKey = keystringToKey(pendingKeystring)
			if cipherKey == 0 {
				firstBlock := make([]byte, blockSize)
				_, _ = sf.Read(firstBlock, headerSize)
				if k, ok := coding.FindKey(firstBlock); ok {
					cipherKey = k
				}
			}
		}
	}
	pendingKeystring = ""

	numSamples := int64(blockCount) * coding.HCABlockSamples

	res := &ParseResult{
		Channels:    channels,
		SampleRate:  int(sampleRate),
		NumSamples:  numSamples,
		LoopFlag:    loopFlag,
		LoopStart:   loopStartBlock * coding.HCABlockSamples,
		LoopEnd:     loopEndBlock * coding.HCABlockSamples,
		StartOffset: headerSize,
		CodecType:   coding.HCA,
		Layout:      layout.None{},
	}
	res.PostOpen = func(chans []*coding.ChannelState) error {
		extra := coding.NewHCAExtra(sampleRate, blockCount, blockSize, headerSize, keyed, cipherKey)
		for _, ch := range chans {
			ch.Extra = extra
		}
		return nil
	}
	return res, nil
}

// findHCAChunk scans the fixed-size header region for a 4-byte tag,
// stopping at headerSize (HCA chunks are tightly packed, not length
// prefixed in a generic way, so this walks tag-by-tag using each chunk's
// known fixed size rather than a generic TLV scan).
func findHCAChunk(sf streamfile.Streamfile, headerSize int64, tag string) (offset int64, ok bool) {
	pos := int64(8) // skip "HCA\0" + version/headerSize
	for pos+4 <= headerSize {
		id := fields.ReadString(sf, pos, 4)
		switch {
		case fields.IsID32BE(sf, pos, "fmt\x00"):
			pos += 16
		case fields.IsID32BE(sf, pos, "comp"), fields.IsID32BE(sf, pos, "dec\x00"):
			if id == tag {
				return pos, true
			}
			pos += 16
		case fields.IsID32BE(sf, pos, "vbr\x00"):
			if id == tag {
				return pos, true
			}
			pos += 8
		case fields.IsID32BE(sf, pos, "ath\x00"):
			if id == tag {
				return pos, true
			}
			pos += 6
		case fields.IsID32BE(sf, pos, "loop"):
			if id == tag {
				return pos, true
			}
			pos += 16
		case fields.IsID32BE(sf, pos, "ciph"):
			if id == tag {
				return pos, true
			}
			pos += 6
		case fields.IsID32BE(sf, pos, "rva\x00"):
			if id == tag {
				return pos, true
			}
			pos += 8
		case fields.IsID32BE(sf, pos, "comm"):
			return 0, false // comment chunk is variable-length and terminal before pad
		case fields.IsID32BE(sf, pos, "pad\x00"):
			return 0, false
		default:
			return 0, false
		}
	}
	return 0, false
}
