package main

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/vgmstream-go/vgmstream/vgmstream"
)

// wavHeader mirrors original_source's cli/wav_utils.h wav_header_t: enough
// to build a RIFF/fmt/(optional smpl)/data chunk set for 16-bit PCM output
// (this CLI only ever renders int16 samples, so isFloat is always false and
// sampleSize is always 2).
type wavHeader struct {
	sampleCount    int64
	sampleRate     int
	channels       int
	writeSmplChunk bool
	loopStart      int64
	loopEnd        int64
}

const (
	wavSampleSize = 2 // bytes per sample, int16 PCM
	wavCodecPCM   = 1
)

// headerSize returns the byte length of the header this stream's options
// produce: RIFF(12) + fmt(8+16) + data(8), plus an smpl chunk (8+0x3c) when
// writeSmplChunk is set (wav_utils.c's wav_make_header, ported chunk order
// and sizes as-is: RIFF, fmt, smpl, data).
func (h wavHeader) headerSize() int {
	size := 12 + 8 + 16 + 8
	if h.writeSmplChunk {
		size += 8 + 0x3c
	}
	return size
}

// writeWavHeader writes the header in wav_utils.c's fixed chunk order:
// RIFF, fmt, optional smpl, data. dataSize is the payload byte length that
// follows the header.
func writeWavHeader(w *bufio.Writer, h wavHeader, dataSize int64) error {
	hdrSize := h.headerSize()
	buf := make([]byte, hdrSize)

	pos := 0
	putStr := func(s string) {
		copy(buf[pos:], s)
		pos += len(s)
	}
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[pos:], v)
		pos += 4
	}
	putU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(buf[pos:], v)
		pos += 2
	}

	// RIFF chunk
	putStr("RIFF")
	putU32(uint32(int64(hdrSize) - 0x08 + dataSize))
	putStr("WAVE")

	// fmt chunk
	putStr("fmt ")
	putU32(0x10)
	putU16(wavCodecPCM)
	putU16(uint16(h.channels))
	putU32(uint32(h.sampleRate))
	putU32(uint32(h.sampleRate * h.channels * wavSampleSize)) // bytes/sec
	putU16(uint16(h.channels * wavSampleSize))                // block align
	putU16(wavSampleSize * 8)                                 // bits/sample

	if h.writeSmplChunk {
		putStr("smpl")
		putU32(0x3c)
		for i := 0; i < 7; i++ {
			putU32(0)
		}
		putU32(1) // num_sample_loops
		for i := 0; i < 3; i++ {
			putU32(0)
		}
		putU32(uint32(h.loopStart))
		putU32(uint32(h.loopEnd))
		putU32(0)
		putU32(0)
	}

	// data chunk
	putStr("data")
	putU32(uint32(dataSize))

	_, err := w.Write(buf)
	return err
}

// renderToWav pumps stream.Render in a loop, writing a WAV file to path:
// a placeholder header first (data size isn't known up front since looped
// streams may fade mid-stream), then every rendered sample, then the
// header is rewritten once the true data size is known.
func renderToWav(stream *vgmstream.Stream, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	h := wavHeader{
		sampleRate:     stream.SampleRate,
		channels:       stream.OutputChannels(),
		writeSmplChunk: stream.LoopFlag && stream.LoopEnd > 0,
		loopStart:      stream.LoopStart,
		loopEnd:        stream.LoopEnd,
	}

	bw := bufio.NewWriter(f)
	if err := writeWavHeader(bw, h, 0); err != nil {
		return err
	}

	var dataBytes int64
	sampleBuf := make([]byte, 0)
	for {
		n, err := stream.Render()
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		samples := stream.Buffer()
		need := len(samples) * 2
		if cap(sampleBuf) < need {
			sampleBuf = make([]byte, need)
		}
		sampleBuf = sampleBuf[:need]
		for i, s := range samples {
			binary.LittleEndian.PutUint16(sampleBuf[i*2:], uint16(s))
		}
		if _, err := bw.Write(sampleBuf); err != nil {
			return err
		}
		dataBytes += int64(need)
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	h.channels = stream.OutputChannels()
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	bw2 := bufio.NewWriter(f)
	if err := writeWavHeader(bw2, h, dataBytes); err != nil {
		return err
	}
	return bw2.Flush()
}
