package vgmstream

import (
	"fmt"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

// Stream is the top-level decoded-audio handle (spec section 3's "Stream"
// object, glossary: "historically the source project's name"). One Stream
// is owned by exactly one caller goroutine at a time (spec 5: "not
// re-entrant on the same Stream").
type Stream struct {
	// Format info, filled by the meta parser that opened this stream.
	Channels      int
	SampleRate    int
	NumSamples    int64 // stream_samples: decoded length of one play-through
	LoopFlag      bool
	LoopStart     int64
	LoopEnd       int64
	ChannelLayout uint32 // standard WAVE channel-mask bitfield, 0 if unknown

	CodecType  coding.Type
	LayoutName string // "none" | "interleave" | "blocked"
	MetaName   string
	StreamName string

	SubsongIndex int // 1-based; always resolved (0 input becomes 1)
	NumStreams   int

	// PlayForeverCapable is set by parsers whose format embeds a native
	// loop-forever marker (e.g. some sequence formats); only streams with
	// this set honor Config.PlayForever (spec 4.8: "requires
	// allow_play_forever" plus this per-format capability gate).
	PlayForeverCapable bool

	ch  []*coding.ChannelState
	cdc coding.Codec
	lay layout.Layout

	blocked               *layout.Blocked
	blockSamplesRemaining []int64

	config      Config
	playSamples int64
	fadeStart   int64
	fadeEnd     int64
	loopTarget  int // see noLoopCap / wrapsAllowed

	currentSample int64 // real decode-head position within the underlying file
	played        int64 // monotonic virtual playback position, counting every loop pass
	loopHits      int
	loopCh        []*coding.ChannelState // snapshot taken the first time loop_start is reached
	loopTaken     bool

	buf         []int16 // interleaved scratch buffer, Channels*bufferCap samples
	bufCap      int
	bufSamples  int
	outChannels int // channel count after the mixing chain (stereo_track/downmix may reduce it)
	done        bool
	closed      bool
}

// OutputChannels returns the channel count of the most recently rendered
// buffer, which may be less than Channels if stereo_track or
// auto_downmix_channels is configured.
func (s *Stream) OutputChannels() int {
	if s.outChannels == 0 {
		return s.Channels
	}
	return s.outChannels
}

// Allocate produces a zeroed Stream with one ChannelState per channel
// (spec 4.7: "allocate(channels, loop_flag) produces a zeroed Stream with
// N ChannelStates"). loopFlag only affects whether Reset/loop handling
// later bothers snapshotting channel state; the slot itself is lazily
// created on first loop-start hit.
func Allocate(channels int, loopFlag bool) *Stream {
	s := &Stream{
		Channels: channels,
		LoopFlag: loopFlag,
		bufCap:   defaultBufferSamples,
	}
	s.ch = make([]*coding.ChannelState, channels)
	for i := range s.ch {
		s.ch[i] = &coding.ChannelState{}
	}
	s.buf = make([]int16, channels*s.bufCap)
	s.outChannels = channels
	return s
}

// OpenStream opens one independent streamfile per channel (spec 4.7:
// "opens one independent streamfile per channel (via sf.open(sf.name()))")
// and positions each at its data start. interleaveBlockSize is accepted
// but not used: an Interleave layout carries its own BlockSize (callers
// pass 0 for None/Blocked).
func (s *Stream) OpenStream(sf streamfile.Streamfile, startOffset int64, lay layout.Layout, cdc coding.Codec, interleaveBlockSize int64) error {
	s.lay = lay
	s.cdc = cdc
	s.blocked, _ = lay.(*layout.Blocked)

	il, isInterleave := lay.(layout.Interleave)

	for i, ch := range s.ch {
		handle, err := sf.Open(sf.Name())
		if err != nil {
			return fmt.Errorf("vgmstream: open channel %d: %w", i, err)
		}
		ch.SF = handle
		switch {
		case isInterleave:
			ch.SF = il.OpenChannelView(handle, startOffset, i)
			ch.StartOffset = 0
		default:
			ch.StartOffset = startOffset
		}
		ch.Offset = ch.StartOffset
		ch.FrameOffset = ch.StartOffset
	}

	_ = interleaveBlockSize
	lay.Reset(s.ch)
	if resetter, ok := cdc.(coding.Resetter); ok {
		for _, ch := range s.ch {
			resetter.Reset(ch)
		}
	}
	if s.blocked != nil {
		s.recomputeBlockBudget()
	}
	return nil
}

// ApplyConfig computes play_samples from num_samples/loop_*/config per
// spec 4.8, validating options (spec 7's ConfigInvalid). Must be called
// once after OpenStream and before the first Render/Fill/Seek.
func (s *Stream) ApplyConfig(cfg Config) error {
	if cfg.ForceSfmt != SampleFormatNative {
		switch cfg.ForceSfmt {
		case SampleFormatPCM16, SampleFormatPCM24, SampleFormatPCM32, SampleFormatFloat32:
		default:
			return fmt.Errorf("%w: force_sfmt %d", ErrConfigInvalid, cfg.ForceSfmt)
		}
	}
	s.config = cfg

	loopFlag := s.LoopFlag
	loopStart, loopEnd := s.LoopStart, s.LoopEnd
	if cfg.IgnoreLoop {
		loopFlag = false
	}
	if !loopFlag && cfg.ForceLoop {
		loopFlag = true
		loopStart, loopEnd = 0, s.NumSamples
	}
	if cfg.ReallyForceLoop {
		loopFlag = true
		loopStart, loopEnd = 0, s.NumSamples
	}
	s.LoopFlag = loopFlag
	s.LoopStart, s.LoopEnd = loopStart, loopEnd

	loopCount := cfg.LoopCount
	if loopCount <= 0 {
		loopCount = 1
	}

	s.loopTarget = noLoopCap

	switch {
	case cfg.PlayForever && cfg.AllowPlayForever && s.PlayForeverCapable:
		s.playSamples = 0 // informational only; done is never set from sample count
	case loopFlag:
		loopBody := loopEnd - loopStart
		played := loopStart + int64(float64(loopBody)*loopCount)
		tailFade := int64(cfg.FadeTime * float64(s.SampleRate))
		tailDelay := int64(cfg.FadeDelay * float64(s.SampleRate))
		if cfg.IgnoreFade {
			played = loopStart + int64(float64(loopBody)*float64(int(loopCount)))
			played += s.NumSamples - loopEnd
			// Play the body int(loopCount) times total, then continue past
			// loop_end into the file's own unrepeated tail instead of
			// wrapping again: that needs int(loopCount)-1 wraps (the first
			// arrival at loop_end is the body's first play, not a repeat).
			s.loopTarget = int(loopCount) - 1
			if s.loopTarget < 0 {
				s.loopTarget = 0
			}
		} else {
			s.fadeStart = played
			played += tailFade + tailDelay
		}
		s.fadeEnd = played
		s.playSamples = played
	default:
		s.playSamples = s.NumSamples
	}

	return nil
}

// noLoopCap marks Stream.loopTarget as "wrap at loop_end unconditionally"
// (the fade-out case: spec 4.9 keeps replaying the loop body, letting the
// fade silence it, rather than ever reaching the file's own tail content).
const noLoopCap = -1

// wrapsAllowed reports whether Render may still rewind to loop_start on
// this pass, per the IgnoreFade "play loop_count times then continue into
// the real tail" policy (see ApplyConfig).
func (s *Stream) wrapsAllowed() bool {
	return s.loopTarget == noLoopCap || s.loopHits < s.loopTarget
}

// PlaySamples returns the computed total sample count for this stream's
// configuration (informational when Config.PlayForever is active).
func (s *Stream) PlaySamples() int64 { return s.playSamples }

// CurrentSample returns the next sample index to be produced, counted
// across the whole virtual playback timeline (every loop pass adds
// loop_end-loop_start, unlike the underlying file position which rewinds
// to loop_start on every pass).
func (s *Stream) CurrentSample() int64 { return s.played }

// Done reports whether the configured play length has been reached.
func (s *Stream) Done() bool { return s.done }

// Reset rewinds current_sample and every channel's read offsets, then
// invokes layout and codec reset (spec 4.7). The channel files stay open;
// they are not reopened.
func (s *Stream) Reset() error {
	s.currentSample = 0
	s.played = 0
	s.loopHits = 0
	s.loopTaken = false
	s.done = false
	s.bufSamples = 0
	for _, ch := range s.ch {
		ch.Offset = ch.StartOffset
		ch.FrameOffset = ch.StartOffset
		ch.Hist1, ch.Hist2 = 0, 0
		ch.StepIndex, ch.Scale = 0, 0
	}
	s.lay.Reset(s.ch)
	if resetter, ok := s.cdc.(coding.Resetter); ok {
		for _, ch := range s.ch {
			resetter.Reset(ch)
		}
	}
	if s.blocked != nil {
		s.recomputeBlockBudget()
	}
	return nil
}

// Free closes all channel streamfiles (spec 4.7). codec_data has no
// separate lifetime in this implementation (it lives inside ChannelState),
// so there is nothing else to release.
func (s *Stream) Free() {
	if s.closed {
		return
	}
	for _, ch := range s.ch {
		if ch.SF != nil {
			_ = ch.SF.Close()
		}
	}
	s.closed = true
}

// recomputeBlockBudget derives, for each channel, how many more samples
// can be decoded before the current container block runs out, from the
// Blocked layout's last-parsed BlockInfo (channel i's data spans
// [offsets[i], offsets[i+1]) and the last channel spans [offsets[n-1],
// NextBlock)).
func (s *Stream) recomputeBlockBudget() {
	info := s.blocked.LastInfo()
	if s.blockSamplesRemaining == nil {
		s.blockSamplesRemaining = make([]int64, len(s.ch))
	}
	sampler, _ := s.cdc.(coding.BytesToSampler)
	for i, ch := range s.ch {
		end := info.NextBlock
		if i+1 < len(info.ChannelOffsets) {
			end = info.ChannelOffsets[i+1]
		}
		avail := end - ch.Offset
		if avail < 0 {
			avail = 0
		}
		if sampler != nil {
			s.blockSamplesRemaining[i] = sampler.BytesToSamples(avail, 1)
		} else {
			s.blockSamplesRemaining[i] = avail / 2 // PCM16 fallback
		}
	}
}
