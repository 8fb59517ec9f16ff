package mixing

import "testing"

func TestApplyStereoTrackSelectsPair(t *testing.T) {
	t.Parallel()

	// 4 channels, 2 frames: frame0 = [1,2,3,4], frame1 = [5,6,7,8]
	buf := []int16{1, 2, 3, 4, 5, 6, 7, 8}
	channels := Apply(buf, 2, Config{Channels: 4, StereoTrack: 2})

	if channels != 2 {
		t.Fatalf("channels = %d, want 2", channels)
	}
	// track 2 (1-based) keeps channels [2,3]
	want := []int16{3, 4, 7, 8}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("buf[%d] = %d, want %d", i, buf[i], w)
		}
	}
}

func TestApplyDownmixQuadToStereo(t *testing.T) {
	t.Parallel()

	// one frame, quad: L=1000 R=2000 Ls=100 Rs=200
	buf := make([]int16, 8)
	buf[0], buf[1], buf[2], buf[3] = 1000, 2000, 100, 200
	channels := Apply(buf, 1, Config{Channels: 4, AutoDownmixChannels: 2})

	if channels != 2 {
		t.Fatalf("channels = %d, want 2", channels)
	}
	wantL := int16(1000 + int32(100)*181/256)
	wantR := int16(2000 + int32(200)*181/256)
	if buf[0] != wantL {
		t.Errorf("L = %d, want %d", buf[0], wantL)
	}
	if buf[1] != wantR {
		t.Errorf("R = %d, want %d", buf[1], wantR)
	}
}

func TestApplyDownmixUndocumentedPairFallsBackToChannelDrop(t *testing.T) {
	t.Parallel()

	buf := []int16{1, 2, 3} // 3 channels, 1 frame
	channels := Apply(buf, 1, Config{Channels: 3, AutoDownmixChannels: 2})

	if channels != 2 {
		t.Fatalf("channels = %d, want 2", channels)
	}
	if buf[0] != 1 || buf[1] != 2 {
		t.Errorf("buf = %v, want first 2 channels kept [1 2]", buf[:2])
	}
}

func TestApplyNoopWhenNoOptionsSet(t *testing.T) {
	t.Parallel()

	buf := []int16{1, 2, 3, 4}
	channels := Apply(buf, 2, Config{Channels: 2})
	if channels != 2 {
		t.Fatalf("channels = %d, want 2 (unchanged)", channels)
	}
	want := []int16{1, 2, 3, 4}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("buf[%d] = %d, want %d (no mutation expected)", i, buf[i], w)
		}
	}
}

func TestFadeRampsLinearly(t *testing.T) {
	t.Parallel()

	// 4 mono frames, fade window [0,4): gain = 1 - sample/4
	buf := []int16{1000, 1000, 1000, 1000}
	Fade(buf, 1, 0, 4, 0, 4)

	want := []int16{1000, 750, 500, 250}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("sample %d = %d, want %d", i, buf[i], w)
		}
	}
}

func TestFadeZeroesSamplesAtOrPastFadeEnd(t *testing.T) {
	t.Parallel()

	buf := []int16{1000, 1000}
	Fade(buf, 1, 4, 2, 0, 4) // samples 4,5 are both >= fadeEnd
	if buf[0] != 0 || buf[1] != 0 {
		t.Errorf("buf = %v, want [0 0]", buf)
	}
}

func TestFadeLeavesSamplesBeforeStartUntouched(t *testing.T) {
	t.Parallel()

	buf := []int16{1000, 1000}
	Fade(buf, 1, 10, 2, 100, 200) // fade window starts well after this buffer
	if buf[0] != 1000 || buf[1] != 1000 {
		t.Errorf("buf = %v, want untouched [1000 1000]", buf)
	}
}

func TestFadeNoopWhenWindowEmpty(t *testing.T) {
	t.Parallel()

	buf := []int16{1000, 1000}
	Fade(buf, 1, 0, 2, 5, 5) // fadeEnd <= fadeStart
	if buf[0] != 1000 || buf[1] != 1000 {
		t.Errorf("buf = %v, want untouched [1000 1000]", buf)
	}
}

func TestConvertFormatPCM16Passthrough(t *testing.T) {
	t.Parallel()

	buf := []int16{0x1234, -1}
	out := ConvertFormat(buf, SampleFormatNative)
	want := []byte{0x34, 0x12, 0xff, 0xff}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %#x, want %#x", i, out[i], w)
		}
	}
}

func TestConvertFormatPCM24Widens(t *testing.T) {
	t.Parallel()

	buf := []int16{1}
	out := ConvertFormat(buf, SampleFormatPCM24)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	// 1 << 8 = 0x100
	want := []byte{0x00, 0x01, 0x00}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %#x, want %#x", i, out[i], w)
		}
	}
}

func TestConvertFormatPCM32Widens(t *testing.T) {
	t.Parallel()

	buf := []int16{1}
	out := ConvertFormat(buf, SampleFormatPCM32)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
	// 1 << 16 = 0x10000
	want := []byte{0x00, 0x00, 0x01, 0x00}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %#x, want %#x", i, out[i], w)
		}
	}
}

func TestConvertFormatFloat32(t *testing.T) {
	t.Parallel()

	// 16384/32768 = 0.5, whose IEEE-754 bit pattern is 0x3f000000
	// (verified externally via struct.pack("<f", 0.5)).
	buf := []int16{16384}
	out := ConvertFormat(buf, SampleFormatFloat32)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
	want := []byte{0x00, 0x00, 0x00, 0x3f}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %#x, want %#x", i, out[i], w)
		}
	}
}
