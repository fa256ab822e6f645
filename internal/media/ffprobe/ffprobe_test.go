package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		report string
		want   Media
	}{
		{
			name:   "container duration",
			report: `{"streams":[{"codec_type":"video","duration":"9.0"},{"codec_type":"audio"}],"format":{"format_name":"mov,mp4","duration":"123.4567"}}`,
			want:   Media{Format: "mov,mp4", Millis: 123457, Audio: 1, Video: 1},
		},
		{
			name:   "longest stream when container omits duration",
			report: `{"streams":[{"codec_type":"audio","duration":"2.5"},{"codec_type":"audio","duration":"4.0"},{"codec_type":"data","duration":"N/A"}],"format":{}}`,
			want:   Media{Millis: 4000, Audio: 2},
		},
		{
			name:   "no duration anywhere",
			report: `{"streams":[{"codec_type":"video"}],"format":{"duration":"N/A"}}`,
			want:   Media{Video: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse([]byte(tt.report))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parse = %+v, want %+v", got, tt.want)
			}
		})
	}
	if _, err := parse([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func stubProbe(t *testing.T, report string) string {
	t.Helper()
	stub := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho '"+report+"'\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return stub
}

func TestAudioMillis(t *testing.T) {
	stub := stubProbe(t, `{"streams":[{"codec_type":"audio"}],"format":{"duration":"12.3456"}}`)
	got, err := AudioMillis(context.Background(), stub, "audio.mp3")
	if err != nil {
		t.Fatalf("AudioMillis: %v", err)
	}
	if got != 12346 {
		t.Fatalf("AudioMillis = %d, want 12346", got)
	}

	silent := stubProbe(t, `{"streams":[{"codec_type":"video"}],"format":{"duration":"3"}}`)
	if _, err := AudioMillis(context.Background(), silent, "reel.mp4"); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}

	empty := stubProbe(t, `{"streams":[{"codec_type":"audio"}],"format":{}}`)
	if _, err := AudioMillis(context.Background(), empty, "audio.mp3"); err == nil {
		t.Fatal("expected error for missing duration")
	}
}

func TestProbeRejectsEmptyPath(t *testing.T) {
	if _, err := Probe(context.Background(), "", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
