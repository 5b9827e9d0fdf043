package downloader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type jsonResult struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	URL        string `json:"url,omitempty"`
	OID        string `json:"oid,omitempty"`
	Title      string `json:"title,omitempty"`
	Output     string `json:"output,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	VideoTrack string `json:"video_track,omitempty"`
	AudioTrack int    `json:"audio_track"`
	Error      string `json:"error,omitempty"`
}

func emitJSONResult(res jsonResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(res)
}

type jsonAudioTrack struct {
	Index    int     `json:"index"`
	Language *string `json:"language"`
	Title    *string `json:"title"`
}

func (d *Downloader) printCatalog(rawURL, oid string, catalog *TrackCatalog) error {
	if d.opts.JSON {
		payload := struct {
			Type        string           `json:"type"`
			URL         string           `json:"url"`
			OID         string           `json:"oid"`
			VideoTracks []string         `json:"video_tracks"`
			AudioTracks []jsonAudioTrack `json:"audio_tracks"`
		}{
			Type:        "tracks",
			URL:         rawURL,
			OID:         oid,
			VideoTracks: catalog.VideoTracks,
			AudioTracks: []jsonAudioTrack{},
		}
		for i, track := range catalog.AudioTracks {
			payload.AudioTracks = append(payload.AudioTracks, jsonAudioTrack{
				Index:    i,
				Language: track.Language,
				Title:    track.Title,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(payload)
	}

	fmt.Printf("oid: %s\n", oid)
	if len(catalog.VideoTracks) == 0 {
		fmt.Println("video tracks: none")
	} else {
		fmt.Printf("video tracks: %s\n", strings.Join(catalog.VideoTracks, ", "))
	}
	if len(catalog.AudioTracks) == 0 {
		fmt.Println("audio tracks: none")
		return nil
	}
	fmt.Println("audio tracks:")
	for i, track := range catalog.AudioTracks {
		fmt.Printf("  %d: %s\n", i, audioTrackLabel(track, i))
	}
	return nil
}
