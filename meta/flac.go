package meta

import (
	flac "github.com/mewkiz/flac"
	"github.com/vgmstream-go/vgmstream/coding"
	"github.com/vgmstream-go/vgmstream/layout"
	"github.com/vgmstream-go/vgmstream/streamfile"
)

func init() {
	Register(&flacParser{}, []string{"flac"}, []string{"flac"})
}

// flacParser recognizes a standalone FLAC stream (fLaC magic + STREAMINFO
// metadata block). An earlier draft of this parser targeted FSB5-wrapped
// FLAC (FMOD's "FSB_SOUND_FORMAT_FLAC" subsongs), but the retrieved pack's
// only FSB source, fsb_vorbis_decoder.c, is Vorbis-specific and never lists
// an FSB5 SoundFormat enum value for FLAC, so that container mapping
// couldn't be grounded in anything actually read. Parsing the FLAC
// bitstream itself needs no container-specific offsets at all: mewkiz/flac
// parses its own STREAMINFO block, so channels/sample_rate/num_samples
// come straight from there instead of from guessed header fields.
type flacParser struct{}

func (flacParser) Name() string { return "FLAC" }

func (flacParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if subsongIndex != 1 {
		return nil, nil
	}

	magic := make([]byte, 4)
	if n, _ := sf.Read(magic, 0); n < 4 || string(magic) != "fLaC" {
		return nil, nil
	}

	stream, err := flac.New(&flacProbeReader{sf: sf})
	if err != nil {
		return nil, nil
	}
	info := stream.Info
	if info == nil || info.NChannels == 0 || info.SampleRate == 0 {
		return nil, nil
	}

	return &ParseResult{
		Channels:    int(info.NChannels),
		SampleRate:  int(info.SampleRate),
		NumSamples:  int64(info.NSamples),
		StartOffset: 0,
		CodecType:   coding.FlacDelegate,
		Layout:      layout.None{},
	}, nil
}

// flacProbeReader adapts a Streamfile to the io.Reader mewkiz/flac.New
// wants for the probe-only parse (flacDelegateCodec opens its own reader
// from ch.SF/ch.StartOffset once decoding actually starts).
type flacProbeReader struct {
	sf  streamfile.Streamfile
	pos int64
}

func (r *flacProbeReader) Read(p []byte) (int, error) {
	n, err := r.sf.Read(p, r.pos)
	r.pos += int64(n)
	return n, err
}
