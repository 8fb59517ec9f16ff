package vgmstream

// SampleFormat is the output PCM format requested via Config.ForceSfmt
// (spec 4.8's force_sfmt enum).
type SampleFormat int

const (
	// SampleFormatNative means "whatever the internal decode format is"
	// (this implementation decodes to PCM16 internally; see mixing.ConvertFormat).
	SampleFormatNative SampleFormat = iota
	SampleFormatPCM16
	SampleFormatPCM24
	SampleFormatPCM32
	SampleFormatFloat32
)

// Config mirrors spec 4.8's configuration table. All fields are optional;
// the zero value means "no override". Applied once, after parse and
// before first render (Stream.ApplyConfig).
type Config struct {
	LoopCount   float64 // target number of loops, fractional allowed
	FadeTime    float64 // seconds of linear fade appended after loops
	FadeDelay   float64 // silence after fade, before end

	IgnoreLoop        bool // treat as non-looping
	ForceLoop         bool // loop 0..num_samples if no loop points exist
	ReallyForceLoop   bool // override even existing loop points
	IgnoreFade        bool // play tail after N loops without fading
	PlayForever       bool // never stop (requires AllowPlayForever)
	AllowPlayForever  bool // gate PlayForever

	AutoDownmixChannels int          // downmix to N channels if source has more
	ForceSfmt           SampleFormat // force output sample format
	StereoTrack         int          // select Nth 2ch group (1-based; 0 = off)

	DisableConfigOverride bool // ignore format-embedded config (TXTP-style hints)
}

// defaultBufferSamples is the internal render buffer size in frames, spec
// 4.9's "size chosen by implementation, typically 512-2048 frames".
const defaultBufferSamples = 1024
