package streamfile

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd decompresses the entirety of sf as a single zstd frame and returns
// the result as an in-memory Streamfile. Several modern (Switch-era)
// container formats zstd-compress their audio payload ahead of the codec
// bitstream (see meta/zstd_wrap.go); the decoder never sees compressed
// bytes.
//
// Whole-stream decompression (rather than a streaming decorator) is
// deliberate: these payloads are sized for a single audio stream (at most a
// few MB), and random-access codec reads over a streaming zstd reader would
// require re-decompressing from the start on every seek.
func Zstd(sf Streamfile, name string) (Streamfile, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("streamfile: create zstd decoder: %w", err)
	}
	defer dec.Close()

	src := make([]byte, sf.Size())
	if _, err := sf.Read(src, 0); err != nil {
		return nil, fmt.Errorf("streamfile: read zstd source: %w", err)
	}

	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("streamfile: zstd decompress: %w", err)
	}

	if name == "" {
		name = sf.Name()
	}
	return NewMemory(name, out), nil
}
