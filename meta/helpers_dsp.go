package meta

import "github.com/vgmstream-go/vgmstream/streamfile"

// DSPReadCoefsBE/LE read a per-channel 16-entry int16 coefficient table
// (spec 4.5's dsp_read_coefs_be/le) and return one [16]int32 per channel,
// starting at offset and
// advancing by spacing bytes per channel (spacing lets formats interleave
// a coef table with other per-channel header fields).
func DSPReadCoefsBE(sf streamfile.Streamfile, offset int64, channels int, spacing int64) [][16]int32 {
	return dspReadCoefs(sf, offset, channels, spacing, true)
}

func DSPReadCoefsLE(sf streamfile.Streamfile, offset int64, channels int, spacing int64) [][16]int32 {
	return dspReadCoefs(sf, offset, channels, spacing, false)
}

func dspReadCoefs(sf streamfile.Streamfile, offset int64, channels int, spacing int64, be bool) [][16]int32 {
	out := make([][16]int32, channels)
	buf := make([]byte, 2)
	for ch := 0; ch < channels; ch++ {
		base := offset + int64(ch)*spacing
		for i := 0; i < 16; i++ {
			_, _ = sf.Read(buf, base+int64(i)*2)
			var v int16
			if be {
				v = int16(uint16(buf[1]) | uint16(buf[0])<<8)
			} else {
				v = int16(uint16(buf[0]) | uint16(buf[1])<<8)
			}
			out[ch][i] = int32(v)
		}
	}
	return out
}
