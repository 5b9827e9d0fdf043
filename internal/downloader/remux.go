package downloader

import (
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// StreamSource is one labeled input to the remuxer.
type StreamSource struct {
	Label string
	URL   string
}

// Remuxer combines already-encoded streams into one output container
// without re-encoding. The concrete implementation shells out to ffmpeg;
// tests substitute a fake.
type Remuxer interface {
	Remux(sources []StreamSource, outputPath string) error
}

// FFmpegRemuxer muxes the sources with ffmpeg stream copy. Mixed-codec
// outputs (e.g. .mkv holding h264 + mp3) are left to ffmpeg to handle.
type FFmpegRemuxer struct {
	// Verbose leaves ffmpeg's own log on stderr instead of silencing it.
	Verbose bool
}

func (r FFmpegRemuxer) Remux(sources []StreamSource, outputPath string) error {
	if len(sources) == 0 {
		return fmt.Errorf("remux: no input sources")
	}
	streams := make([]*ffmpeg.Stream, 0, len(sources))
	for _, source := range sources {
		streams = append(streams, ffmpeg.Input(source.URL))
	}
	return ffmpeg.Output(streams, outputPath, ffmpeg.KwArgs{"c": "copy"}).
		Silent(!r.Verbose).
		Run()
}
