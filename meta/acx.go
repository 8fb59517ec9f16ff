package meta

import (
	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/streamfile/fields"
)

func init() {
	Register(&acxParser{}, []string{"acx"}, nil)
}

// acxParser recognizes a minimal subsong container (spec 8, test scenario
// 4): 4 zero bytes, a big-endian entry count, then that many (offset,size)
// big-endian u32 pairs. Each entry is a complete, independently-parseable
// inner stream; stream_index selects which one to open.
type acxParser struct{}

func (acxParser) Name() string { return "ACX container" }

func (acxParser) ProbeAndOpen(sf streamfile.Streamfile, subsongIndex int) (*ParseResult, error) {
	if fields.U32BE(sf, 0) != 0 {
		return nil, nil
	}
	entryCount := int(fields.U32BE(sf, 4))
	if entryCount <= 0 || entryCount > 65536 {
		return nil, nil
	}
	// Sanity-check the table actually fits and the first entry looks like
	// a real offset/size pair before committing to this format.
	tableEnd := int64(8) + int64(entryCount)*8
	if tableEnd > sf.Size() {
		return nil, nil
	}

	if subsongIndex < 1 || subsongIndex > entryCount {
		return nil, nil
	}
	entryOff := int64(8) + int64(subsongIndex-1)*8
	childOffset := int64(fields.U32BE(sf, entryOff))
	childSize := int64(fields.U32BE(sf, entryOff+4))
	if childOffset < tableEnd || childOffset+childSize > sf.Size() {
		return nil, nil
	}

	child := streamfile.Clamp(sf, childOffset, childSize)
	res, err := Probe(child, 1)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	res.NumStreams = entryCount
	res.SubsongIndex = subsongIndex
	return res, nil
}
