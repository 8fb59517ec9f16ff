package streamfile

// TransformFunc interposes a per-read transform (decryption, XOR,
// de-obfuscation) on bytes already fetched from inner. It receives the
// absolute stream offset each byte came from, since stream ciphers like
// HCA's are keyed by position.
type TransformFunc func(dst []byte, offset int64)

// ioDecorator wraps a Streamfile and runs every Read result through a
// TransformFunc before returning it to the caller. The decoder downstream
// never sees ciphertext; this is how HCA/AHX-style XOR-keyed streams are
// modeled per spec's "Decryption layers" design note.
type ioDecorator struct {
	inner Streamfile
	xform TransformFunc
}

// IO returns sf decorated with xform applied to every read.
func IO(sf Streamfile, xform TransformFunc) Streamfile {
	return &ioDecorator{inner: sf, xform: xform}
}

func (d *ioDecorator) Read(dst []byte, offset int64) (int, error) {
	n, err := d.inner.Read(dst, offset)
	if n > 0 {
		d.xform(dst[:n], offset)
	}
	return n, err
}

func (d *ioDecorator) Size() int64 { return d.inner.Size() }
func (d *ioDecorator) Name() string { return d.inner.Name() }

func (d *ioDecorator) Open(name string) (Streamfile, error) {
	sibling, err := d.inner.Open(name)
	if err != nil {
		return nil, err
	}
	return IO(sibling, d.xform), nil
}

func (d *ioDecorator) Close() error { return d.inner.Close() }
