package meta

import (
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&riffWavParser{}, []string{"wav"}, []string{"wav", "lwav"})
}

// RIFF fmt chunk tags this parser recognizes (WAVEFORMATEX wFormatTag),
// grounded on the field layout other_examples' pfcm/audiofile wav reader
// uses (channels/sampleRate/dataRate/blockAlign/bitsPerSample at fixed
// LE offsets 2/4/8/12/14).
const (
	wavTagPCM     = 0x0001
	wavTagMSADPCM = 0x0002
	wavTagFloat   = 0x0003
	wavTagALaw    = 0x0006
	wavTagMULaw   = 0x0007
	wavTagDVIIMA  = 0x0011 // MS-IMA / DVI ADPCM
)

// riffWavParser reads standard "RIFF....WAVE" containers, wiring whichever
// codec the fmt chunk's wFormatTag names. Loop points come from an
// optional "smpl" chunk (MIDI sampler chunk, spec 4.6's generic
// "container carries its own loop metadata" case); ADPCM sample counts
// come from a "fact" chunk when present, else are derived from data size.
type riffWavParser struct{}

func (riffWavParser) Name() string { return "RIFF WAVE" }

func (riffWavParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}
	if !fields.IsID32BE(sf, 0, "RIFF") || !fields.IsID32BE(sf, 8, "WAVE") {
		return nil, nil
	}

	fmtOff, fmtSize, ok := fields.FindChunk(sf, "fmt ", 12, true)
	if !ok || fmtSize < 16 {
		return nil, nil
	}
	dataOff, dataSize, ok := fields.FindChunk(sf, "data", 12, true)
	if !ok {
		return nil, nil
	}

	tag := fields.U16LE(sf, fmtOff)
	channels := int(fields.U16LE(sf, fmtOff+2))
	sampleRate := fields.U32LE(sf, fmtOff+4)
	blockAlign := fields.U16LE(sf, fmtOff+12)
	bitsPerSample := fields.U16LE(sf, fmtOff+14)

	if channels <= 0 || channels > 64 || sampleRate == 0 {
		return nil, nil
	}

	loopFlag, loopStart, loopEnd := readSmplLoop(sf)

	res := &ParseResult{
		Channels:    channels,
		SampleRate:  int(sampleRate),
		LoopFlag:    loopFlag,
		LoopStart:   loopStart,
		LoopEnd:     loopEnd,
		StartOffset: dataOff,
	}

	switch tag {
	case wavTagPCM:
		switch bitsPerSample {
		case 8:
			res.CodecType = coding.PCM8U
		case 24:
			res.CodecType = coding.PCM24LE
		case 32:
			res.CodecType = coding.PCM32LE
		default:
			res.CodecType = coding.PCM16LE
		}
		bytesPerSample := int64(bitsPerSample) / 8
		if bytesPerSample <= 0 {
			bytesPerSample = 2
		}
		res.NumSamples = int64(dataSize) / bytesPerSample / int64(channels)
		res.Layout = layout.Interleave{BlockSize: bytesPerSample, Channels: channels}

	case wavTagFloat:
		res.CodecType = coding.PCMFloatLE
		res.NumSamples = int64(dataSize) / 4 / int64(channels)
		res.Layout = layout.Interleave{BlockSize: 4, Channels: channels}

	case wavTagALaw:
		res.CodecType = coding.ALaw
		res.NumSamples = int64(dataSize) / int64(channels)
		res.Layout = layout.Interleave{BlockSize: 1, Channels: channels}

	case wavTagMULaw:
		res.CodecType = coding.ULaw
		res.NumSamples = int64(dataSize) / int64(channels)
		res.Layout = layout.Interleave{BlockSize: 1, Channels: channels}

	case wavTagMSADPCM:
		res.CodecType = coding.MSADPCM
		res.Layout = layout.None{}
		if factOff, _, ok := fields.FindChunk(sf, "fact", 12, true); ok {
			res.NumSamples = int64(fields.U32LE(sf, factOff))
		} else {
			res.NumSamples = coding.MSADPCMBytesToSamples(int64(dataSize), channels, int64(blockAlign))
		}
		bs := int32(blockAlign)
		res.PostOpen = func(chans []*coding.ChannelState) error {
			for _, ch := range chans {
				ch.Extra = coding.NewMSADPCMExtra(bs)
			}
			return nil
		}

	case wavTagDVIIMA:
		res.CodecType = coding.MSIMA
		res.Layout = layout.None{}
		if factOff, _, ok := fields.FindChunk(sf, "fact", 12, true); ok {
			res.NumSamples = int64(fields.U32LE(sf, factOff))
		} else {
			res.NumSamples = coding.MSIMABytesToSamples(int64(dataSize), channels, int64(blockAlign))
		}
		bs := int32(blockAlign)
		res.PostOpen = func(chans []*coding.ChannelState) error {
			for _, ch := range chans {
				ch.Extra = coding.NewMSIMAExtra(bs)
			}
			return nil
		}

	default:
		return nil, nil
	}

	// A "smpl" loop spanning the entire file on a sub-one-second stream is
	// usually a UE3-style export artifact rather than an intentional loop
	// (spec §9 Open Question decision); riff_wav.go is the parser that
	// actually sees this pattern in practice (smpl chunks are WAV's own
	// loop metadata), so it opts into the suppression directly.
	if loopFlag, loopStart, loopEnd, fired := SuppressTrivialFullLoop(
		res.LoopFlag, res.LoopStart, res.LoopEnd, res.NumSamples, int64(sampleRate),
	); fired {
		res.LoopFlag, res.LoopStart, res.LoopEnd = loopFlag, loopStart, loopEnd
	}

	return res, nil
}

// readSmplLoop reads the first loop region of an optional "smpl" chunk
// (MIDI sampler chunk: manufacturer/product/period/unity/pitch/SMPTE
// format/offset u32 fields, num_loops u32, sampler_data u32, then
// num_loops * (cue_id, type, start, end, fraction, play_count) u32
// sextets). Only the first loop's start/end are used.
func readSmplLoop(sf streamfile.Streamfile) (loopFlag bool, loopStart, loopEnd int64) {
	off, _, ok := fields.FindChunk(sf, "smpl", 12, true)
	if !ok {
		return false, 0, 0
	}
	numLoops := fields.U32LE(sf, off+28)
	if numLoops == 0 {
		return false, 0, 0
	}
	loopOff := off + 36
	loopStart = int64(fields.U32LE(sf, loopOff+8))
	loopEnd = int64(fields.U32LE(sf, loopOff+12))
	return true, loopStart, loopEnd
}
