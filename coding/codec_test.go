package coding

import (
	"errors"
	"testing"
)

func TestNewResolvesRegisteredCodec(t *testing.T) {
	t.Parallel()

	codec, err := New(PCM16LE)
	if err != nil {
		t.Fatalf("New(PCM16LE): %v", err)
	}
	if codec == nil {
		t.Fatal("expected a non-nil codec")
	}
}

func TestNewRejectsUnregisteredTag(t *testing.T) {
	t.Parallel()

	_, err := New(Type("not_a_real_codec"))
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("err = %v, want ErrUnsupportedCodec", err)
	}
}

func TestRegisterPanicsOnDuplicateTag(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected Register to panic on a duplicate tag")
		}
	}()
	Register(PCM16LE, func() Codec { return nil })
}

func TestChannelStateCloneIsIndependent(t *testing.T) {
	t.Parallel()

	original := &ChannelState{Offset: 10, Hist1: 5, Hist2: 6, Coefs: [16]int32{1, 2, 3}}
	clone := original.Clone()

	clone.Offset = 99
	clone.Coefs[0] = 42

	if original.Offset != 10 {
		t.Errorf("original.Offset = %d, want 10 (clone must not alias the original)", original.Offset)
	}
	if original.Coefs[0] != 1 {
		t.Errorf("original.Coefs[0] = %d, want 1 (Coefs is a value array, clone must not alias it)", original.Coefs[0])
	}
	if clone.Hist1 != 5 || clone.Hist2 != 6 {
		t.Errorf("clone history = %d/%d, want 5/6 (copied from original)", clone.Hist1, clone.Hist2)
	}
}
