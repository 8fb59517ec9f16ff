package streamfile

import "fmt"

// Wrap returns a Streamfile that forwards every call to sf. It exists so
// callers can share ownership of one underlying handle across several
// decorator chains without each chain assuming it owns the close.
type wrapped struct {
	inner Streamfile
}

// Wrap forwards everything to sf; Close is a no-op so the inner handle
// outlives the wrapper.
func Wrap(sf Streamfile) Streamfile {
	return &wrapped{inner: sf}
}

func (w *wrapped) Read(dst []byte, offset int64) (int, error) { return w.inner.Read(dst, offset) }
func (w *wrapped) Size() int64                                { return w.inner.Size() }
func (w *wrapped) Name() string                                { return w.inner.Name() }
func (w *wrapped) Open(name string) (Streamfile, error)        { return w.inner.Open(name) }
func (w *wrapped) Close() error                                { return nil }

// clamped presents [start, start+size) of inner as an independent
// zero-based Streamfile.
type clamped struct {
	inner Streamfile
	start int64
	size  int64
}

// Clamp presents the sub-range [start, start+size) of sf as an independent
// streamfile with its own zero-based offsets and adjusted Size(). Used by
// container parsers to hand a sub-stream (one track of a bank, one subsong
// of a container) to a recursive parser probe.
func Clamp(sf Streamfile, start, size int64) Streamfile {
	if start < 0 {
		start = 0
	}
	if start+size > sf.Size() {
		size = sf.Size() - start
	}
	if size < 0 {
		size = 0
	}
	return &clamped{inner: sf, start: start, size: size}
}

func (c *clamped) Read(dst []byte, offset int64) (int, error) {
	if offset < 0 || offset >= c.size {
		return 0, nil
	}
	want := len(dst)
	if offset+int64(want) > c.size {
		want = int(c.size - offset)
	}
	return c.inner.Read(dst[:want], c.start+offset)
}

func (c *clamped) Size() int64 { return c.size }
func (c *clamped) Name() string { return c.inner.Name() }

func (c *clamped) Open(name string) (Streamfile, error) {
	if name == c.inner.Name() {
		return Clamp(Wrap(c.inner), c.start, c.size), nil
	}
	return c.inner.Open(name)
}

func (c *clamped) Close() error { return nil }

// fakename overrides Name() so a parser probing by extension sees a
// synthetic name instead of the real one.
type fakename struct {
	inner Streamfile
	name  string
}

// Fakename overrides sf's Name() with a synthetic one (typically changing
// just the extension), so a format parser that disambiguates by extension
// can be invoked on bytes that do not actually live in a file with that
// extension (a subfile extracted from a bank, for instance).
func Fakename(sf Streamfile, name string) Streamfile {
	return &fakename{inner: sf, name: name}
}

func (f *fakename) Read(dst []byte, offset int64) (int, error) { return f.inner.Read(dst, offset) }
func (f *fakename) Size() int64                                { return f.inner.Size() }
func (f *fakename) Name() string                                { return f.name }
func (f *fakename) Open(name string) (Streamfile, error)        { return f.inner.Open(name) }
func (f *fakename) Close() error                                { return nil }

// Subfile builds a fully independent sub-stream: clamp to [offset, offset+size)
// then rename with fakeExt, mirroring spec 4.5's setup_subfile_streamfile.
// The result can be re-run through the parser registry to recognize a
// container format nested inside another (e.g. an ffmpeg-delegate codec
// stored inside a proprietary bank).
func Subfile(sf Streamfile, offset, size int64, fakeExt string) Streamfile {
	base := Clamp(sf, offset, size)
	if fakeExt == "" {
		return base
	}
	newName := replaceExt(sf.Name(), fakeExt)
	return Fakename(base, newName)
}

func replaceExt(name, newExt string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return fmt.Sprintf("%s.%s", name[:i], newExt)
		}
		if name[i] == '/' || name[i] == '\\' {
			break
		}
	}
	return fmt.Sprintf("%s.%s", name, newExt)
}
