package vgmstream

import (
	"fmt"

	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/mixing"
)

// Render decodes the next internal buffer of samples, per spec 4.9.
// Returns the number of sample frames produced (non-negative on success).
func (s *Stream) Render() (int, error) {
	return s.renderUpTo(s.bufCap)
}

// renderUpTo is Render's implementation, additionally capped at maxSamples
// (Fill uses this so a short request doesn't silently overrun the decode
// head past the caller's target - see discardTo, which relies on being
// able to land exactly on a seek target).
func (s *Stream) renderUpTo(maxSamples int) (int, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}
	if s.done && !s.playingForever() {
		return 0, nil
	}

	samplesToDecode := s.bufCap
	if maxSamples < samplesToDecode {
		samplesToDecode = maxSamples
	}
	if !s.playingForever() {
		remaining := s.playSamples - s.played
		if remaining < int64(samplesToDecode) {
			samplesToDecode = int(remaining)
		}
	}
	if samplesToDecode <= 0 {
		s.done = true
		return 0, nil
	}
	wraps := s.wrapsAllowed()
	if s.LoopFlag && wraps && s.currentSample+int64(samplesToDecode) > s.LoopEnd && s.currentSample < s.LoopEnd {
		samplesToDecode = int(s.LoopEnd - s.currentSample)
	}
	// Clamp at loop_start too, so the decoder-history snapshot is taken at
	// an exact buffer boundary rather than mid-buffer.
	if s.LoopFlag && !s.loopTaken && s.currentSample < s.LoopStart && s.currentSample+int64(samplesToDecode) > s.LoopStart {
		samplesToDecode = int(s.LoopStart - s.currentSample)
	}

	if err := s.decodeSamples(samplesToDecode); err != nil {
		return 0, err
	}

	s.currentSample += int64(samplesToDecode)
	s.played += int64(samplesToDecode)
	s.bufSamples = samplesToDecode

	if s.LoopFlag && !s.loopTaken && s.currentSample == s.LoopStart {
		s.snapshotLoopChannels()
	}
	if s.LoopFlag && wraps && s.currentSample == s.LoopEnd {
		s.applyLoop()
	}

	s.applyMixingAndFade()

	if !s.playingForever() && s.played >= s.playSamples {
		s.done = true
	}
	return s.bufSamples, nil
}

// Fill decodes directly into the caller's buffer, looping Render
// internally as needed to satisfy n samples (spec 4.9's fill()).
func (s *Stream) Fill(out []int16, n int) (int, error) {
	produced := 0
	for produced < n {
		got, err := s.renderUpTo(n - produced)
		if err != nil {
			return produced, err
		}
		if got == 0 {
			break
		}
		oc := s.OutputChannels()
		copy(out[produced*oc:(produced+got)*oc], s.buf[:got*oc])
		produced += got
	}
	return produced, nil
}

// Seek clamps to [0, play_samples]; within the first play-through it
// resets and decode-discards up to target, and past loop_end it maps to
// the equivalent point inside the loop and restores the loop snapshot
// (spec 4.9's seek()).
func (s *Stream) Seek(sample int64) error {
	if s.closed {
		return ErrStreamClosed
	}
	if sample < 0 {
		sample = 0
	}
	if !s.playingForever() && sample > s.playSamples {
		sample = s.playSamples
	}

	if s.LoopFlag && sample >= s.LoopEnd && s.loopTaken {
		loopBody := s.LoopEnd - s.LoopStart
		if loopBody <= 0 {
			loopBody = 1
		}
		offsetIntoLoop := (sample - s.LoopStart) % loopBody
		s.restoreLoopSnapshot()
		s.currentSample = s.LoopStart
		s.played = s.LoopStart
		return s.discardTo(s.LoopStart + offsetIntoLoop)
	}

	if err := s.Reset(); err != nil {
		return err
	}
	return s.discardTo(sample)
}

func (s *Stream) discardTo(target int64) error {
	scratch := make([]int16, s.Channels*s.bufCap)
	for s.played < target {
		toDo := target - s.played
		if toDo > int64(s.bufCap) {
			toDo = int64(s.bufCap)
		}
		n, err := s.Fill(scratch, int(toDo))
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	return nil
}

func (s *Stream) playingForever() bool {
	return s.config.PlayForever && s.config.AllowPlayForever && s.PlayForeverCapable
}

// decodeSamples runs the per-channel NextFrame+Decode cycle for
// samplesToDo samples, splitting the call at Blocked-layout block
// boundaries so every channel advances to the next block together (spec
// 4.4: "When a channel exhausts the current block, all channels advance
// together to next_block_offset").
func (s *Stream) decodeSamples(samplesToDo int) error {
	bufOffset := 0
	remaining := samplesToDo
	for remaining > 0 {
		chunk := remaining
		if s.blocked != nil {
			minBudget := minInt64Slice(s.blockSamplesRemaining)
			if minBudget <= 0 {
				if err := s.blocked.ApplyBlock(s.ch); err != nil {
					return fmt.Errorf("vgmstream: block update: %w", err)
				}
				s.recomputeBlockBudget()
				minBudget = minInt64Slice(s.blockSamplesRemaining)
				if minBudget <= 0 {
					break // malformed/short block; stop rather than spin
				}
			}
			if int64(chunk) > minBudget {
				chunk = int(minBudget)
			}
		}

		out := s.buf[bufOffset*s.Channels : (bufOffset+chunk)*s.Channels]
		firstSample := int(s.currentSample) + bufOffset
		for i, ch := range s.ch {
			s.lay.NextFrame(ch, i, s.Channels, s.currentSample+int64(bufOffset))
			if err := s.cdc.Decode(ch, out, firstSample, chunk, s.Channels, i); err != nil {
				logInfo("decode error on channel %d: %v", i, err)
				zeroFill(out, i, s.Channels, chunk)
			}
		}
		if s.blocked != nil {
			for i := range s.blockSamplesRemaining {
				s.blockSamplesRemaining[i] -= int64(chunk)
			}
		}

		bufOffset += chunk
		remaining -= chunk
	}
	return nil
}

// zeroFill implements spec 7's DecodeTransient policy: a codec error
// degrades the affected region to silence rather than aborting render.
func zeroFill(out []int16, channelIndex, channels, samplesToDo int) {
	for k := 0; k < samplesToDo; k++ {
		out[channelIndex+channels*k] = 0
	}
}

func minInt64Slice(v []int64) int64 {
	if len(v) == 0 {
		return 0
	}
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// applyLoop copies the loop snapshot's channel state back in (or takes the
// snapshot on the first arrival, if none exists yet) and rewinds
// current_sample, per spec 4.9's render algorithm and glossary's "Loop
// point" entry ("Loop state includes per-channel decoder history at the
// moment loop_start was first reached").
func (s *Stream) applyLoop() {
	if !s.loopTaken {
		// loop_start==0: Render's pre-decode clamp never fires because
		// current_sample starts at loop_start already, so take the
		// snapshot now from the freshly-opened state.
		s.snapshotLoopChannels()
	}
	s.restoreLoopSnapshot()
	s.currentSample = s.LoopStart
	s.loopHits++
}

func (s *Stream) snapshotLoopChannels() {
	s.loopCh = make([]*coding.ChannelState, len(s.ch))
	for i, ch := range s.ch {
		s.loopCh[i] = ch.Clone()
	}
	s.loopTaken = true
}

// restoreLoopSnapshot copies the snapshotted per-channel decode state back
// into the live channels (spec glossary's "Loop point" semantics). A
// codec whose ChannelState.Extra holds more than value data (NWA's shared
// block buffer, HCA's cipher table) is responsible for keeping Extra safe
// to alias across the snapshot, since Clone is a shallow copy.
func (s *Stream) restoreLoopSnapshot() {
	if s.loopCh == nil {
		return
	}
	for i, ch := range s.ch {
		if i >= len(s.loopCh) {
			break
		}
		snap := *s.loopCh[i]
		snap.SF = ch.SF // keep this channel's own open handle
		*ch = snap
	}
}

func (s *Stream) applyMixingAndFade() {
	cfg := mixing.Config{
		Channels:            s.Channels,
		StereoTrack:         s.config.StereoTrack,
		AutoDownmixChannels: s.config.AutoDownmixChannels,
		ForceFormat:         mixing.SampleFormat(s.config.ForceSfmt),
	}
	s.outChannels = mixing.Apply(s.buf[:s.bufSamples*s.Channels], s.bufSamples, cfg)

	if !s.config.IgnoreFade && s.fadeStart > 0 && s.fadeEnd > s.fadeStart {
		startOfBuf := s.played - int64(s.bufSamples)
		mixing.Fade(s.buf[:s.bufSamples*s.outChannels], s.outChannels, startOfBuf, s.bufSamples, s.fadeStart, s.fadeEnd)
	}
}

// Buffer returns the view of the most recently rendered samples
// (interleaved, OutputChannels() per frame), valid until the next Render
// call (spec 9's "Buffer ownership" design note).
func (s *Stream) Buffer() []int16 {
	return s.buf[:s.bufSamples*s.OutputChannels()]
}
