// Package sniff classifies raw content into a MIME type using byte
// signatures with an extension fallback. Detection is a pure function: no
// I/O, always returns a value.
package sniff

import (
	"bytes"
	"path/filepath"
	"strings"
)

// FallbackMime is returned when neither signature nor extension matches.
const FallbackMime = "application/octet-stream"

// signature is one entry of the ordered detection table. Longer and more
// specific patterns must come before shorter overlapping ones so container
// formats resolve deterministically.
type signature struct {
	prefix []byte
	// probe, when set, is matched at probeOffset in addition to prefix.
	probe       []byte
	probeOffset int
	mime        string
}

var signatures = []signature{
	{prefix: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, mime: "image/png"},
	{prefix: []byte("RIFF"), probe: []byte("WEBP"), probeOffset: 8, mime: "image/webp"},
	{prefix: []byte("RIFF"), probe: []byte("WAVE"), probeOffset: 8, mime: "audio/wav"},
	{prefix: []byte{0xFF, 0xD8, 0xFF}, mime: "image/jpeg"},
	{prefix: []byte("GIF8"), mime: "image/gif"},
	{prefix: []byte("%PDF"), mime: "application/pdf"},
	{prefix: []byte("OggS"), mime: "audio/ogg"},
	{prefix: []byte("ID3"), mime: "audio/mpeg"},
	{prefix: []byte{0xFF, 0xFB}, mime: "audio/mpeg"},
	{prefix: []byte{0x1A, 0x45, 0xDF, 0xA3}, mime: "video/webm"},
	{prefix: []byte{0x00, 0x00, 0x00}, probe: []byte("ftyp"), probeOffset: 4, mime: "video/mp4"},
	{prefix: []byte("PK\x03\x04"), mime: "application/zip"},
}

var extensionMimes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".m4a":  "audio/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".zip":  "application/zip",
	".txt":  "text/plain",
	".md":   "text/plain",
	".csv":  "text/csv",
	".json": "application/json",
	".html": "text/html",
}

// Detect classifies data by signature first, then by filename extension.
// It never fails; unrecognized content yields FallbackMime.
func Detect(data []byte, filename string) string {
	for _, sig := range signatures {
		if !bytes.HasPrefix(data, sig.prefix) {
			continue
		}
		if len(sig.probe) > 0 {
			end := sig.probeOffset + len(sig.probe)
			if len(data) < end || !bytes.Equal(data[sig.probeOffset:end], sig.probe) {
				continue
			}
		}
		return sig.mime
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if mime, ok := extensionMimes[ext]; ok {
		return mime
	}
	return FallbackMime
}

// IsImage reports whether mime is an image type.
func IsImage(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}
