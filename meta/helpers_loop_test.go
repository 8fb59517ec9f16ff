package meta

import "testing"

func TestSuppressTrivialFullLoopDropsShortFullFileLoop(t *testing.T) {
	t.Parallel()

	loopFlag, start, end, suppressed := SuppressTrivialFullLoop(true, 0, 1000, 1000, 5000)
	if !suppressed {
		t.Error("expected suppressed = true for a short full-file loop")
	}
	if loopFlag {
		t.Error("expected loopFlag = false after suppression")
	}
	if start != 0 || end != 0 {
		t.Errorf("start/end = %d/%d, want 0/0 after suppression", start, end)
	}
}

func TestSuppressTrivialFullLoopKeepsLongStreamLoop(t *testing.T) {
	t.Parallel()

	loopFlag, start, end, suppressed := SuppressTrivialFullLoop(true, 0, 100000, 100000, 5000)
	if suppressed {
		t.Error("expected suppressed = false, stream is long enough to trust a genuine full-file loop")
	}
	if !loopFlag || start != 0 || end != 100000 {
		t.Errorf("loopFlag/start/end = %v/%d/%d, want true/0/100000 (untouched)", loopFlag, start, end)
	}
}

func TestSuppressTrivialFullLoopIgnoresPartialLoop(t *testing.T) {
	t.Parallel()

	// loop_end != num_samples: not a full-file loop, never touched.
	loopFlag, start, end, suppressed := SuppressTrivialFullLoop(true, 0, 500, 1000, 5000)
	if suppressed {
		t.Error("expected suppressed = false for a partial loop")
	}
	if !loopFlag || start != 0 || end != 500 {
		t.Errorf("loopFlag/start/end = %v/%d/%d, want true/0/500 (untouched)", loopFlag, start, end)
	}
}

func TestSuppressTrivialFullLoopIgnoresNoLoop(t *testing.T) {
	t.Parallel()

	loopFlag, _, _, suppressed := SuppressTrivialFullLoop(false, 0, 0, 1000, 5000)
	if loopFlag || suppressed {
		t.Error("expected no-op when loopFlag is already false")
	}
}
