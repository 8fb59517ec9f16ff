// Package mixing implements spec 4.10's post-decode chain: stereo track
// selection, auto-downmix, sample format conversion, and fade envelope.
// All operations work on the interleaved PCM16 buffer vgmstream.Stream
// decodes into, in the order the spec lists them.
package mixing

import "math"

// SampleFormat mirrors vgmstream.SampleFormat without importing that
// package (mixing sits below vgmstream in the dependency graph).
type SampleFormat int

const (
	SampleFormatNative SampleFormat = iota
	SampleFormatPCM16
	SampleFormatPCM24
	SampleFormatPCM32
	SampleFormatFloat32
)

// Config carries the subset of vgmstream.Config relevant to the mixing
// chain for one Apply call.
type Config struct {
	Channels            int
	StereoTrack         int // 1-based; 0 means "no selection"
	AutoDownmixChannels int // 0 means "no downmix"
	ForceFormat         SampleFormat
}

// downmixMatrices holds fixed coefficient tables for reducing common
// surround layouts to fewer channels (spec 4.10: "a simple, documented
// matrix is sufficient; quality is not the goal"). Keyed by
// (sourceChannels, targetChannels). Values are Q8 fixed point (256 = 1.0).
var downmixMatrices = map[[2]int][][]int32{ //nolint:gochecknoglobals // fixed algorithm constants
	// 5.1 (L R C LFE Ls Rs) -> stereo, standard ITU-ish center/surround mix.
	{6, 2}: {
		{256, 0, 181, 0, 181, 0},
		{0, 256, 181, 0, 0, 181},
	},
	// Quad (L R Ls Rs) -> stereo.
	{4, 2}: {
		{256, 0, 181, 0},
		{0, 256, 0, 181},
	},
}

// Apply runs stereo_track and auto_downmix in place on buf (Channels
// samples per frame, frames frames). Because both operations can change
// the channel count, Apply returns the buffer's new effective channel
// count; callers that need to reinterpret buf afterward (as
// vgmstream.Stream's Buffer and Fill do) must use this, not cfg.Channels.
func Apply(buf []int16, frames int, cfg Config) int {
	channels := cfg.Channels
	if cfg.StereoTrack > 0 {
		channels = applyStereoTrack(buf, frames, channels, cfg.StereoTrack)
	}
	if cfg.AutoDownmixChannels > 0 && cfg.AutoDownmixChannels < channels {
		channels = applyDownmix(buf, frames, channels, cfg.AutoDownmixChannels)
	}
	// force_sfmt (PCM24/32/float conversion) operates on the sample type,
	// not the int16 buffer this package's Apply is given; callers that
	// need a non-PCM16 output format convert from Buffer()/Fill() results
	// using ConvertFormat below, after Apply has settled the channel count.
	return channels
}

// applyStereoTrack keeps channels [2*(k-1), 2*(k-1)+1] for 1-based track k
// and drops the rest, compacting the buffer in place.
func applyStereoTrack(buf []int16, frames, channels, track int) int {
	base := 2 * (track - 1)
	if base < 0 || base+1 >= channels {
		return channels
	}
	for f := 0; f < frames; f++ {
		buf[f*2+0] = buf[f*channels+base+0]
		buf[f*2+1] = buf[f*channels+base+1]
	}
	return 2
}

func applyDownmix(buf []int16, frames, srcChannels, dstChannels int) int {
	matrix, ok := downmixMatrices[[2]int{srcChannels, dstChannels}]
	if !ok {
		// No documented matrix for this pair: fall back to a naive
		// channel-drop (keep the first dstChannels) rather than silently
		// producing wrong audio from guessed coefficients.
		for f := 0; f < frames; f++ {
			copy(buf[f*dstChannels:f*dstChannels+dstChannels], buf[f*srcChannels:f*srcChannels+dstChannels])
		}
		return dstChannels
	}
	for f := 0; f < frames; f++ {
		src := buf[f*srcChannels : f*srcChannels+srcChannels]
		var out [8]int32
		for o := 0; o < dstChannels; o++ {
			var acc int32
			for i := 0; i < srcChannels; i++ {
				acc += int32(src[i]) * matrix[o][i] / 256
			}
			out[o] = clamp16(acc)
		}
		for o := 0; o < dstChannels; o++ {
			buf[f*dstChannels+o] = int16(out[o])
		}
	}
	return dstChannels
}

func clamp16(v int32) int32 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return v
	}
}

// Fade multiplies samples in [fadeStart, fadeEnd) by a linearly decreasing
// envelope 1 - (sample-fadeStart)/(fadeEnd-fadeStart), clamped to [0,1]
// (spec 4.10 point 4). bufStartSample is the absolute sample index of
// buf's first frame.
func Fade(buf []int16, channels int, bufStartSample int64, frames int, fadeStart, fadeEnd int64) {
	fadeLen := fadeEnd - fadeStart
	if fadeLen <= 0 {
		return
	}
	for f := 0; f < frames; f++ {
		abs := bufStartSample + int64(f)
		if abs < fadeStart {
			continue
		}
		var gain float64
		if abs >= fadeEnd {
			gain = 0
		} else {
			gain = 1 - float64(abs-fadeStart)/float64(fadeLen)
			if gain < 0 {
				gain = 0
			}
			if gain > 1 {
				gain = 1
			}
		}
		for c := 0; c < channels; c++ {
			idx := f*channels + c
			buf[idx] = int16(float64(buf[idx]) * gain)
		}
	}
}

// ConvertFormat expands a PCM16 interleaved buffer into the requested
// output sample format, per spec 4.10 point 3. PCM16 (and Native) samples
// are copied unchanged into a new little-endian byte slice; wider/float
// formats are likewise produced as raw little-endian bytes.
func ConvertFormat(buf []int16, format SampleFormat) []byte {
	switch format {
	case SampleFormatPCM24:
		out := make([]byte, len(buf)*3)
		for i, s := range buf {
			v := int32(s) << 8 // widen 16-bit depth into a 24-bit container
			out[i*3+0] = byte(v)
			out[i*3+1] = byte(v >> 8)
			out[i*3+2] = byte(v >> 16)
		}
		return out
	case SampleFormatPCM32:
		out := make([]byte, len(buf)*4)
		for i, s := range buf {
			v := int32(s) << 16
			out[i*4+0] = byte(v)
			out[i*4+1] = byte(v >> 8)
			out[i*4+2] = byte(v >> 16)
			out[i*4+3] = byte(v >> 24)
		}
		return out
	case SampleFormatFloat32:
		out := make([]byte, len(buf)*4)
		for i, s := range buf {
			f := float32(s) / 32768.0
			bits := float32bits(f)
			out[i*4+0] = byte(bits)
			out[i*4+1] = byte(bits >> 8)
			out[i*4+2] = byte(bits >> 16)
			out[i*4+3] = byte(bits >> 24)
		}
		return out
	default: // SampleFormatNative, SampleFormatPCM16
		out := make([]byte, len(buf)*2)
		for i, s := range buf {
			out[i*2+0] = byte(s)
			out[i*2+1] = byte(s >> 8)
		}
		return out
	}
}

func float32bits(f float32) uint32 {
	return math.Float32bits(f)
}
