package coding

// imaIndexTable and imaStepTable are the standard IMA ADPCM tables shared
// by every IMA variant in spec section 4.3 (MS-IMA, Xbox-IMA, Apple IMA4,
// NDS-IMA, and the rest of the family) — only frame layout and bit order
// differ between variants, never these tables.
var imaIndexTable = [16]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

var imaStepTable = [89]int32{ //nolint:gochecknoglobals // fixed algorithm constant
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// imaExpandNibble decodes a single signed 4-bit IMA nibble against
// (hist, stepIndex), returning the new sample and updating both in place.
// This is the one true IMA core shared by every variant below.
func imaExpandNibble(nibble int32, hist, stepIndex *int32) int16 {
	step := imaStepTable[*stepIndex]

	diff := step >> 3
	if nibble&1 != 0 {
		diff += step >> 2
	}
	if nibble&2 != 0 {
		diff += step >> 1
	}
	if nibble&4 != 0 {
		diff += step
	}
	if nibble&8 != 0 {
		diff = -diff
	}

	sample := clampS16(*hist + diff)
	*hist = sample

	*stepIndex += imaIndexTable[nibble&0xf]
	switch {
	case *stepIndex < 0:
		*stepIndex = 0
	case *stepIndex > int32(len(imaStepTable)-1):
		*stepIndex = int32(len(imaStepTable) - 1)
	}

	return int16(sample)
}
