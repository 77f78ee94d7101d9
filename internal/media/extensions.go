// Package media wraps the external ffmpeg/ffprobe tooling: duration probing,
// clip extraction, audio export, and the supported-extension policy that
// decides which files are eligible for the queue.
package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind partitions supported files into audio and video sources. The pipeline
// asks before exporting audio from audio sources but not from video ones.
type Kind int

const (
	KindUnsupported Kind = iota
	KindAudio
	KindVideo
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".flac": {},
	".ogg":  {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {},
	".mkv": {},
	".avi": {},
	".mov": {},
}

// KindOf classifies a path by extension, case-insensitively.
func KindOf(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := audioExtensions[ext]; ok {
		return KindAudio
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	return KindUnsupported
}

// IsSupported reports whether the path carries a queueable extension.
func IsSupported(path string) bool {
	return KindOf(path) != KindUnsupported
}

// SupportedExtensions returns the full eligible set, sorted, for display.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(audioExtensions)+len(videoExtensions))
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ScanDirectory collects supported regular files under dir. With recursive
// set it walks the whole tree; otherwise only the top level is listed.
// Unreadable subtrees are skipped rather than failing the scan.
func ScanDirectory(dir string, recursive bool) []string {
	var files []string
	if recursive {
		_ = filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if entry.Type().IsRegular() && IsSupported(path) {
				files = append(files, path)
			}
			return nil
		})
		return files
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if IsSupported(path) {
			files = append(files, path)
		}
	}
	return files
}
