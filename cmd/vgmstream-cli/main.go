// Command vgmstream-cli decodes one game audio file to a .wav file,
// a thin flag-parse/render/write layer over the vgmstream library
// (spec §6's CLI surface note: "a thin layer that parses flags, calls
// create_stream, pumps render, and writes WAV headers/samples"),
// structured the way the teacher's cmd/gameid/main.go wraps gameid.Identify.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vgmstream-go/vgmstream/streamfile"
	"github.com/vgmstream-go/vgmstream/tags"
	"github.com/vgmstream-go/vgmstream/vgmstream"
)

var (
	inputFile  = flag.String("i", "", "input file path (required)")
	outputFile = flag.String("o", "", "output .wav path (default: <input>.wav)")
	subsong    = flag.Int("s", 0, "subsong index (0 = default)")
	loopCount  = flag.Float64("l", 2, "target loop count for looping streams")
	fadeTime   = flag.Float64("f", 10, "fade length in seconds")
	ignoreLoop = flag.Bool("ignore-loop", false, "treat as non-looping")
	forceLoop  = flag.Bool("force-loop", false, "loop 0..num_samples when the file has no loop points")
	version    = flag.Bool("version", false, "print version and exit")
	printTags  = flag.String("tags", "", "print tags from this .m3u sidecar file and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Decodes one game audio file to .wav.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("vgmstream-cli version %s\n", vgmstream.Version())
		os.Exit(0)
	}

	if *printTags != "" {
		if err := dumpTags(*printTags, *inputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading tags: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: input file required (-i)\n")
		flag.Usage()
		os.Exit(1)
	}

	sf, err := vgmstream.OpenPath(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", *inputFile, err)
		os.Exit(1)
	}
	defer func() { _ = sf.Close() }()

	cfg := &vgmstream.Config{
		LoopCount:  *loopCount,
		FadeTime:   *fadeTime,
		IgnoreLoop: *ignoreLoop,
		ForceLoop:  *forceLoop,
	}
	stream, err := vgmstream.CreateStream(sf, *subsong, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %s: %v\n", *inputFile, err)
		os.Exit(1)
	}
	defer stream.Free()

	out := *outputFile
	if out == "" {
		out = *inputFile + ".wav"
	}
	if err := renderToWav(stream, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("%s -> %s (%s, %d Hz, %d ch, %s)\n",
		*inputFile, out, stream.CodecType, stream.SampleRate, stream.Channels, stream.GetTitle(vgmstream.TitleOptions{}))
}

// dumpTags prints every tag that applies to target (spec §6's Tags
// interface; the CLI's thin wrapper around the tags package), reading
// m3uPath as the sidecar (typically tags.DefaultFilename).
func dumpTags(m3uPath, target string) error {
	sf, err := streamfile.OpenFile(m3uPath)
	if err != nil {
		return err
	}
	defer func() { _ = sf.Close() }()

	r, err := tags.Open(sf)
	if err != nil {
		return err
	}
	for _, t := range r.Find(target) {
		fmt.Printf("%s=%s\n", t.Key, t.Value)
	}
	return nil
}
