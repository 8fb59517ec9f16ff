// Package fields provides typed, endian-aware field reads over a
// streamfile.Streamfile, grounded on go-gameid's internal/binary reader
// helpers (ReadUint16LEAt, ReadStringAt, CleanString, ...) but generalized
// into parallel little-endian/big-endian function sets and adapted to read
// through the Streamfile interface instead of io.ReaderAt directly.
//
// All reads are bounds-checked by the underlying Streamfile and return 0 on
// out-of-range access rather than an error — format parsers rely on this
// "classic" behavior to do speculative probe reads (spec section 4.2).
package fields

import (
	"strings"

	"github.com/vgmstream-go/vgmstream/streamfile"
)

func readN(sf streamfile.Streamfile, offset int64, n int) []byte {
	buf := make([]byte, n)
	got, _ := sf.Read(buf, offset)
	return buf[:got]
}

// U8 reads a single byte at offset.
func U8(sf streamfile.Streamfile, offset int64) uint8 {
	b := readN(sf, offset, 1)
	if len(b) < 1 {
		return 0
	}
	return b[0]
}

// S8 reads a signed byte at offset.
func S8(sf streamfile.Streamfile, offset int64) int8 {
	return int8(U8(sf, offset))
}

// U16LE reads a little-endian uint16 at offset.
func U16LE(sf streamfile.Streamfile, offset int64) uint16 {
	b := readN(sf, offset, 2)
	if len(b) < 2 {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

// U16BE reads a big-endian uint16 at offset.
func U16BE(sf streamfile.Streamfile, offset int64) uint16 {
	b := readN(sf, offset, 2)
	if len(b) < 2 {
		return 0
	}
	return uint16(b[1]) | uint16(b[0])<<8
}

// S16LE reads a little-endian int16 at offset.
func S16LE(sf streamfile.Streamfile, offset int64) int16 { return int16(U16LE(sf, offset)) }

// S16BE reads a big-endian int16 at offset.
func S16BE(sf streamfile.Streamfile, offset int64) int16 { return int16(U16BE(sf, offset)) }

// U32LE reads a little-endian uint32 at offset.
func U32LE(sf streamfile.Streamfile, offset int64) uint32 {
	b := readN(sf, offset, 4)
	if len(b) < 4 {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// U32BE reads a big-endian uint32 at offset.
func U32BE(sf streamfile.Streamfile, offset int64) uint32 {
	b := readN(sf, offset, 4)
	if len(b) < 4 {
		return 0
	}
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
}

// S32LE reads a little-endian int32 at offset.
func S32LE(sf streamfile.Streamfile, offset int64) int32 { return int32(U32LE(sf, offset)) }

// S32BE reads a big-endian int32 at offset.
func S32BE(sf streamfile.Streamfile, offset int64) int32 { return int32(U32BE(sf, offset)) }

// U64LE reads a little-endian uint64 at offset.
func U64LE(sf streamfile.Streamfile, offset int64) uint64 {
	lo := uint64(U32LE(sf, offset))
	hi := uint64(U32LE(sf, offset+4))
	return lo | hi<<32
}

// U64BE reads a big-endian uint64 at offset.
func U64BE(sf streamfile.Streamfile, offset int64) uint64 {
	hi := uint64(U32BE(sf, offset))
	lo := uint64(U32BE(sf, offset+4))
	return lo | hi<<32
}

// ReadString reads n bytes at offset and returns them as a string, trimmed
// at the first null byte and of surrounding whitespace (mirrors
// internal/binary.CleanString in the teacher).
func ReadString(sf streamfile.Streamfile, offset int64, n int) string {
	return CleanString(readN(sf, offset, n))
}

// CleanString converts bytes to a string, trimming at the first null byte
// and surrounding whitespace.
func CleanString(data []byte) string {
	end := len(data)
	for i, c := range data {
		if c == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(data[:end]))
}

// ExtractPrintable keeps only printable ASCII (0x20-0x7E) from data.
func ExtractPrintable(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c >= 0x20 && c <= 0x7E {
			_ = b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

// IsID32BE reports whether the 4 bytes at offset equal id, e.g.
// IsID32BE(sf, 0, "RIFF").
func IsID32BE(sf streamfile.Streamfile, offset int64, id string) bool {
	if len(id) != 4 {
		return false
	}
	b := readN(sf, offset, 4)
	return len(b) == 4 && string(b) == id
}

// IsID32LE reports whether the 4 bytes at offset equal id read in reverse
// order, i.e. the bytes on disk are id's characters stored little-endian
// as a 32-bit word (common for fourCCs like "OggS" read as a LE magic).
func IsID32LE(sf streamfile.Streamfile, offset int64, id string) bool {
	if len(id) != 4 {
		return false
	}
	b := readN(sf, offset, 4)
	return len(b) == 4 && b[0] == id[3] && b[1] == id[2] && b[2] == id[1] && b[3] == id[0]
}

// FindChunk scans a RIFF-style tagged-chunk stream starting at start for a
// chunk with the given 4-byte id, returning (dataOffset, dataSize, true) on
// success. isLE selects whether chunk-size fields are little- or
// big-endian (RIFF containers are LE; some platform variants are BE).
func FindChunk(sf streamfile.Streamfile, id string, start int64, isLE bool) (offset int64, size uint32, ok bool) {
	pos := start
	total := sf.Size()
	for pos+8 <= total {
		chunkID := readN(sf, pos, 4)
		var chunkSize uint32
		if isLE {
			chunkSize = U32LE(sf, pos+4)
		} else {
			chunkSize = U32BE(sf, pos+4)
		}
		if len(chunkID) == 4 && string(chunkID) == id {
			return pos + 8, chunkSize, true
		}
		advance := int64(chunkSize)
		if advance%2 == 1 {
			advance++ // RIFF chunks are word-aligned
		}
		pos += 8 + advance
		if advance <= 0 {
			break
		}
	}
	return 0, 0, false
}

// GuessEndianness32 inspects a 32-bit value at offset that is known to be
// small (a sample rate, channel count, or similar) in both byte orders and
// returns true if the little-endian interpretation is the plausible one.
// Used by formats whose endianness varies by platform release.
func GuessEndianness32(sf streamfile.Streamfile, offset int64, maxPlausible uint32) (isLE bool) {
	le := U32LE(sf, offset)
	be := U32BE(sf, offset)
	switch {
	case le <= maxPlausible && be > maxPlausible:
		return true
	case be <= maxPlausible && le > maxPlausible:
		return false
	default:
		return true
	}
}
