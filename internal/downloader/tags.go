package downloader

import (
	"fmt"
	"path/filepath"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
)

// embedAudioTags writes ID3v2 tags into .mp3 outputs so audio-only
// downloads carry their title. Other containers keep whatever metadata
// the remuxer copied over; tagging failures are reported but never fail
// the download.
func embedAudioTags(outputPath, title string, track *AudioTrack, printer *Printer) {
	if strings.ToLower(filepath.Ext(outputPath)) != ".mp3" {
		return
	}
	if err := embedID3Tags(outputPath, title, track); err != nil && printer != nil {
		printer.Log(logWarn, fmt.Sprintf("warning: metadata tag embedding failed: %v", err))
	}
}

func embedID3Tags(outputPath, title string, track *AudioTrack) error {
	tag, err := id3v2.Open(outputPath, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if title != "" {
		tag.SetTitle(title)
	}
	if track != nil {
		if track.Title != nil && *track.Title != "" {
			tag.AddTextFrame(tag.CommonID("Subtitle/Description refinement"), tag.DefaultEncoding(), *track.Title)
		}
		if track.Language != nil && *track.Language != "" {
			tag.AddTextFrame(tag.CommonID("Language"), tag.DefaultEncoding(), *track.Language)
		}
	}
	return tag.Save()
}
