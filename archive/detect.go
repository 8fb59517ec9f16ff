// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IsAudioExtension reports whether ext (with or without a leading dot) is
// present in extensions, case-insensitively. Callers pass
// vgmstream.GetExtensions() so an archive member is recognized the same way
// a plain on-disk file would be — this package has no header-sniffing logic
// of its own, since members aren't probed until the meta registry sees
// their bytes.
func IsAudioExtension(ext string, extensions []string) bool {
	ext = normalizeExt(ext)
	for _, e := range extensions {
		if normalizeExt(e) == ext {
			return true
		}
	}
	return false
}

// DetectAudioFile finds the first member of arc whose extension is in
// extensions, for the common case of a single-track distribution where the
// caller just points at the archive and expects the one audio file inside
// it to be found automatically.
func DetectAudioFile(arc Archive, extensions []string) (string, error) {
	files, err := arc.List()
	if err != nil {
		return "", fmt.Errorf("list archive files: %w", err)
	}

	for _, file := range files {
		if IsAudioExtension(filepath.Ext(file.Name), extensions) {
			return file.Name, nil
		}
	}

	return "", NoAudioFilesError{Archive: "archive"}
}

// ListAudioFiles returns every member of arc whose extension is in
// extensions, letting a caller enumerate every candidate subsong in a
// multi-track distribution before picking one.
func ListAudioFiles(arc Archive, extensions []string) ([]string, error) {
	files, err := arc.List()
	if err != nil {
		return nil, fmt.Errorf("list archive files: %w", err)
	}

	var out []string
	for _, file := range files {
		if IsAudioExtension(filepath.Ext(file.Name), extensions) {
			out = append(out, file.Name)
		}
	}
	return out, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
