package sniff

import "testing"

func TestDetectSignatures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "image/jpeg"},
		{"gif", []byte("GIF89a...."), "image/gif"},
		{"pdf", []byte("%PDF-1.7"), "application/pdf"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), "audio/wav"},
		{"ogg", []byte("OggS\x00\x02"), "audio/ogg"},
		{"mp3 id3", []byte("ID3\x04\x00"), "audio/mpeg"},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01}, "video/webm"},
		{"mp4", []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}, "video/mp4"},
		{"zip", []byte("PK\x03\x04\x14"), "application/zip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Detect(tc.data, ""); got != tc.want {
				t.Fatalf("Detect(%s) = %s, want %s", tc.name, got, tc.want)
			}
		})
	}
}

func TestDetectSignatureBeatsFilename(t *testing.T) {
	t.Parallel()

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if got := Detect(png, "photo.pdf"); got != "image/png" {
		t.Fatalf("signature should win over extension, got %s", got)
	}
}

func TestDetectExtensionFallback(t *testing.T) {
	t.Parallel()

	if got := Detect([]byte("just some words"), "notes.txt"); got != "text/plain" {
		t.Fatalf("expected text/plain, got %s", got)
	}
	if got := Detect([]byte("just some words"), "NOTES.TXT"); got != "text/plain" {
		t.Fatalf("extension match should be case-insensitive, got %s", got)
	}
}

func TestDetectFallback(t *testing.T) {
	t.Parallel()

	if got := Detect([]byte{0x00, 0x01, 0x02}, ""); got != FallbackMime {
		t.Fatalf("expected %s, got %s", FallbackMime, got)
	}
	if got := Detect(nil, ""); got != FallbackMime {
		t.Fatalf("expected %s for empty input, got %s", FallbackMime, got)
	}
}

func TestDetectDeterministic(t *testing.T) {
	t.Parallel()

	data := []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
	first := Detect(data, "clip.wav")
	second := Detect(data, "clip.wav")
	if first != second || first != "image/webp" {
		t.Fatalf("detection not deterministic: %s vs %s", first, second)
	}
}

func TestIsImage(t *testing.T) {
	t.Parallel()

	if !IsImage("image/png") {
		t.Fatal("image/png should be an image")
	}
	if IsImage("application/pdf") {
		t.Fatal("application/pdf is not an image")
	}
}
