package meta

import (
	"strings"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

func init() {
	// Registered from a file named to sort last (spec 4.6 point 2: "raw
	// PCM assumed by extension ... last"), so every header-bearing parser
	// gets first refusal before this catch-all claims the file.
	Register(&rawPCMParser{}, []string{"int", "raw"}, nil)
}

// rawPCMParser recognizes headerless raw 16-bit stereo PCM by extension
// alone (spec 4.6 point 2's ".int" example), the lowest-priority entry in
// the registry. Per spec 4.6 point 3, it actively rejects files whose
// leading bytes look like a different, header-bearing format that simply
// shares the extension by convention, rather than blindly claiming
// anything unclaimed.
type rawPCMParser struct{}

func (rawPCMParser) Name() string { return "raw PCM (by extension)" }

const rawPCMSampleRate = 44100
const rawPCMChannels = 2

func (rawPCMParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}
	name := strings.ToLower(sf.Name())
	if !strings.HasSuffix(name, ".int") && !strings.HasSuffix(name, ".raw") {
		return nil, nil
	}
	if looksLikePSADPCMFrame(sf) {
		return nil, nil
	}

	size := sf.Size()
	if size <= 0 || size%int64(rawPCMChannels*2) != 0 {
		return nil, nil
	}

	return &ParseResult{
		Channels:    rawPCMChannels,
		SampleRate:  rawPCMSampleRate,
		NumSamples:  size / int64(rawPCMChannels*2),
		StartOffset: 0,
		CodecType:   coding.PCM16LE,
		Layout:      layout.Interleave{BlockSize: 2, Channels: rawPCMChannels},
	}, nil
}

// looksLikePSADPCMFrame checks whether the first 16-byte frame has a
// PS-ADPCM-shaped header (predictor nibble <= 4, flag byte one of the
// small known set) so a misnamed .vag sharing the .int/.raw extension by
// convention isn't swallowed as raw PCM (spec 4.6 point 3's stated
// example of exactly this hijack risk).
func looksLikePSADPCMFrame(sf streamfile.Streamfile) bool {
	buf := make([]byte, 16)
	got, _ := sf.Read(buf, 0)
	if got < 16 {
		return false
	}
	predictor := buf[0] >> 4
	flag := buf[1]
	if predictor > 4 {
		return false
	}
	switch flag {
	case 0x00, coding.PSFlagLoopStart, coding.PSFlagLoopEnd, coding.PSFlagLoopEndRep:
		return true
	}
	return false
}
