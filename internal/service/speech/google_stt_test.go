package speech

import "testing"

func TestDetectEncoding(t *testing.T) {
	cases := []struct {
		name  string
		audio []byte
		want  string
	}{
		{"webm magic", []byte{0x1A, 0x45, 0xDF, 0xA3, 0, 0, 0, 0, 0, 0, 0, 0}, "WEBM_OPUS"},
		{"wav riff", []byte("RIFF....WAVE"), "LINEAR16"},
		{"ogg", []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00"), "OGG_OPUS"},
		{"mp3 frame sync", []byte{0xFF, 0xFB}, "MP3"},
		{"unknown", []byte("hello world!"), "WEBM_OPUS"},
		{"too short", []byte{0x01}, "WEBM_OPUS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectEncoding(tc.audio); got != tc.want {
				t.Fatalf("detectEncoding = %s, want %s", got, tc.want)
			}
		})
	}
}
