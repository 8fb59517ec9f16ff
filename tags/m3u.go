// Package tags implements the ".m3u sidecar tag reader" spec §6's "Tags
// interface" describes: global "# @KEY value" lines apply to every file in
// the directory; a "# filename.ext" marker line starts a block of
// per-file tags that apply only to that name. Spec §1 lists the reader as
// out of scope for the *core* decoder framework, but documents its
// interface anyway and nothing in the stated Non-goals excludes a small
// sidecar package sitting alongside it (see DESIGN.md); behavior here is
// grounded on original_source's cli/api_example.c test_lib_tags and
// cli/vgmstream_cli.c's "!tags.m3u" default filename.
package tags

import (
	"bufio"
	"path/filepath"
	"strings"

	"github.com/vgmstream-go/vgmstream/streamfile"
)

// DefaultFilename is the conventional sidecar tag filename
// (vgmstream_cli.c's cfg->tag_filename default, "!tags.m3u").
const DefaultFilename = "!tags.m3u"

// Tag is one key/value pair in file order. Keys are stored upper-cased so
// key comparisons are case-insensitive (spec §6: "case-insensitive key
// compare"); values keep their case.
type Tag struct {
	Key   string
	Value string
}

// Reader holds the parsed global tags plus every per-file tag block.
type Reader struct {
	global  []Tag
	perFile map[string][]Tag // key: lowercased basename
}

// Open reads and parses sf as an .m3u tag sidecar. Lines are "# @KEY
// value" (a tag) or "# filename.ext" (a per-file marker); anything else,
// including non-comment playlist lines, is ignored. Tags appearing before
// the first marker are global and apply to every file.
func Open(sf streamfile.Streamfile) (*Reader, error) {
	data := make([]byte, sf.Size())
	if _, err := sf.Read(data, 0); err != nil {
		return nil, err
	}

	r := &Reader{perFile: map[string][]Tag{}}
	currentKey := "" // "" means the global block

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if body == "" {
			continue
		}

		if strings.HasPrefix(body, "@") {
			key, val, ok := splitTagLine(strings.TrimPrefix(body, "@"))
			if !ok {
				continue
			}
			tag := Tag{Key: key, Value: val}
			if currentKey == "" {
				r.global = append(r.global, tag)
			} else {
				r.perFile[currentKey] = append(r.perFile[currentKey], tag)
			}
			continue
		}

		currentKey = strings.ToLower(body)
		if _, exists := r.perFile[currentKey]; !exists {
			r.perFile[currentKey] = nil
		}
	}

	return r, scanner.Err()
}

// splitTagLine parses "KEY value" (first run of non-space is the key, the
// rest, trimmed, is the value).
func splitTagLine(s string) (key, val string, ok bool) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}
	key = strings.ToUpper(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		val = strings.TrimSpace(parts[1])
	}
	return key, val, true
}

// Find returns every tag that applies to targetFilename: the global block
// followed by that file's own block, if any. Matching tries the name
// exactly as given first, then falls back to a basename-only compare
// (spec §6: "matching target_filename ... case-insensitive,
// basename-only fallback"), so a caller can pass either a bare filename
// or a full path. A target with no matching per-file block still gets the
// global tags alone.
func (r *Reader) Find(targetFilename string) []Tag {
	key := strings.ToLower(targetFilename)
	block, ok := r.perFile[key]
	if !ok {
		base := strings.ToLower(filepath.Base(targetFilename))
		block = r.perFile[base]
	}

	out := make([]Tag, 0, len(r.global)+len(block))
	out = append(out, r.global...)
	out = append(out, block...)
	return out
}

// Get returns the value of the last tag matching key (case-insensitive)
// for targetFilename, per-file tags taking precedence over a global tag
// of the same key since they're appended after the global block in Find.
func (r *Reader) Get(targetFilename, key string) (string, bool) {
	key = strings.ToUpper(key)
	val, found := "", false
	for _, t := range r.Find(targetFilename) {
		if t.Key == key {
			val, found = t.Value, true
		}
	}
	return val, found
}
