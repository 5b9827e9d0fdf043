package downloader

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ubigrab/ubigrab/internal/history"
)

// Options describes CLI behavior for a run. One Options value is shared by
// every URL of the invocation.
type Options struct {
	Dir        string
	Ext        string
	VideoTrack string
	AudioTrack int // -1 = auto-select
	AudioOnly  bool
	ListOnly   bool
	JSON       bool
	Quiet      bool
	Timeout    time.Duration
}

// DownloadRequest names everything one download needs. VideoTrack "" means
// no video; AudioTrack nil means no audio; at least one must be present.
// Requests are built per invocation and never persisted.
type DownloadRequest struct {
	OID        string
	SourceURL  string
	VideoTrack string
	AudioTrack *int
	Dir        string
	Ext        string
}

type downloadResult struct {
	bytes      int64
	outputPath string
	title      string
}

// Downloader drives one URL at a time: resolve, pick tracks, download.
// It holds no per-URL state.
type Downloader struct {
	client  *Client
	remuxer Remuxer
	history *history.DB
	printer *Printer
	opts    Options

	// Run totals for the final summary. URLs are processed strictly one
	// after another, so plain fields suffice.
	okCount    int
	failCount  int
	totalBytes int64
}

func New(client *Client, remuxer Remuxer, hist *history.DB, opts Options) *Downloader {
	if remuxer == nil {
		remuxer = FFmpegRemuxer{}
	}
	return &Downloader{
		client:  client,
		remuxer: remuxer,
		history: hist,
		printer: newPrinter(opts),
		opts:    opts,
	}
}

// Process handles a single URL end to end. Errors returned with IsReported
// set have already been printed.
func (d *Downloader) Process(ctx context.Context, rawURL string, index, total int) error {
	oid, err := d.client.ResolveOID(ctx, rawURL)
	if err != nil {
		return err
	}

	catalog, err := d.client.FetchTracks(ctx, oid)
	if err != nil {
		return err
	}

	if d.opts.ListOnly {
		return d.printCatalog(rawURL, oid, catalog)
	}

	videoTrack, err := d.pickVideoTrack(oid, catalog)
	if err != nil {
		return err
	}
	audioTrack := d.pickAudioTrack(catalog)

	prefix := d.printer.Prefix(index, total, oid)
	result, err := d.Download(ctx, DownloadRequest{
		OID:        oid,
		SourceURL:  rawURL,
		VideoTrack: videoTrack,
		AudioTrack: audioTrack,
		Dir:        d.opts.Dir,
		Ext:        d.opts.Ext,
	})
	d.printer.ItemResult(prefix, result, err)
	if err != nil {
		d.failCount++
		if d.opts.JSON {
			// JSON consumers get the error object from main.
			return err
		}
		return markReported(err)
	}
	d.okCount++
	d.totalBytes += result.bytes

	if d.opts.JSON {
		audioIndex := -1
		if audioTrack != nil {
			audioIndex = *audioTrack
		}
		emitJSONResult(jsonResult{
			Type:       "download",
			Status:     "ok",
			URL:        rawURL,
			OID:        oid,
			Title:      result.title,
			Output:     result.outputPath,
			Bytes:      result.bytes,
			VideoTrack: videoTrack,
			AudioTrack: audioIndex,
		})
	}
	return nil
}

// Summary prints the end-of-run line when more than one URL was processed.
func (d *Downloader) Summary(total int) {
	d.printer.Summary(total, d.okCount, d.failCount, d.totalBytes)
}

func (d *Downloader) pickVideoTrack(oid string, catalog *TrackCatalog) (string, error) {
	if d.opts.AudioOnly {
		return "", nil
	}
	if d.opts.VideoTrack != "" {
		return d.opts.VideoTrack, nil
	}
	if len(catalog.VideoTracks) == 0 {
		return "", nil
	}
	if !isTerminal(os.Stdin) {
		// Batch use: no menu to show, take the first rendition.
		track := catalog.VideoTracks[0]
		d.printer.Log(logInfo, fmt.Sprintf("auto-selected video track %q", track))
		return track, nil
	}

	var (
		index int
		err   error
	)
	if isTerminal(os.Stderr) && os.Getenv("TERM") != "dumb" {
		index, err = runTrackSelector(oid, catalog.VideoTracks, catalog.AudioTracks)
	} else {
		index, err = promptTrackIndex(catalog.VideoTracks, "Choose a stream: ")
	}
	if err != nil {
		return "", categoryErrorf(CategoryNoTrackSelected, "track selection failed: %v", err)
	}
	if index < 0 {
		return "", categoryErrorf(CategoryNoTrackSelected, "track selection cancelled")
	}
	return trackAt(catalog.VideoTracks, index)
}

func (d *Downloader) pickAudioTrack(catalog *TrackCatalog) *int {
	if d.opts.AudioTrack >= 0 {
		index := d.opts.AudioTrack
		return &index
	}
	if d.opts.AudioOnly {
		// Force an index so Download reports NoAudioAvailable rather than
		// NoTrackSelected when the asset has no audio tracks.
		index := 0
		return &index
	}
	if index := defaultAudioTrack(catalog.AudioTracks); index >= 0 {
		return &index
	}
	return nil
}

// Download validates the request, re-fetches title and track URLs, computes
// a non-colliding output path, and hands the stream URLs to the remuxer.
// One linear pass; nothing is retried and partial output is not cleaned up.
func (d *Downloader) Download(ctx context.Context, req DownloadRequest) (downloadResult, error) {
	result := downloadResult{}

	info, err := os.Stat(req.Dir)
	if err != nil || !info.IsDir() {
		return result, categoryErrorf(CategoryInvalidDestination, "destination directory %q does not exist", req.Dir)
	}
	if req.VideoTrack == "" && req.AudioTrack == nil {
		return result, categoryErrorf(CategoryNoTrackSelected, "no video track or audio track selected")
	}

	catalog, err := d.client.FetchTracks(ctx, req.OID)
	if err != nil {
		return result, err
	}
	if req.VideoTrack != "" {
		if len(catalog.VideoTracks) == 0 {
			return result, categoryErrorf(CategoryNoVideoAvailable, "no video track available for %s", req.OID)
		}
		if !catalog.HasVideoTrack(req.VideoTrack) {
			return result, categoryErrorf(CategoryInvalidVideoTrack, "video track %q is not available (have %v)", req.VideoTrack, catalog.VideoTracks)
		}
	}
	if req.AudioTrack != nil {
		if len(catalog.AudioTracks) == 0 {
			return result, categoryErrorf(CategoryNoAudioAvailable, "no audio track available for %s", req.OID)
		}
		if *req.AudioTrack < 0 || *req.AudioTrack >= len(catalog.AudioTracks) {
			return result, categoryErrorf(CategoryInvalidAudioTrack, "audio track %d out of range (have %d)", *req.AudioTrack, len(catalog.AudioTracks))
		}
	}

	media, err := d.client.GetMediaInfo(ctx, req.OID)
	if err != nil {
		return result, err
	}
	if media.Title == nil {
		return result, categoryErrorf(CategoryMalformedResponse, "media info response has no info.title")
	}

	// Track indices are only valid against the catalog fetched alongside
	// the URLs, so fetch once more and resolve from that.
	catalog, err = d.client.FetchTracks(ctx, req.OID)
	if err != nil {
		return result, err
	}

	title := sanitizeTitle(*media.Title)
	if title == "" {
		title = req.OID
	}
	result.title = title

	ext := req.Ext
	if ext == "" {
		ext = ".mp4"
	}
	outputPath, err := availablePath(req.Dir, title, ext)
	if err != nil {
		return result, err
	}

	var sources []StreamSource
	if req.VideoTrack != "" {
		streamURL, ok := catalog.VideoURL(req.VideoTrack)
		if !ok {
			return result, categoryErrorf(CategoryMalformedResponse, "modes response has no resource URL for track %q", req.VideoTrack)
		}
		sources = append(sources, StreamSource{Label: req.VideoTrack, URL: streamURL})
	}
	if req.AudioTrack != nil {
		streamURL, ok := catalog.AudioURL(*req.AudioTrack)
		if !ok {
			return result, categoryErrorf(CategoryMalformedResponse, "modes response has no URL for audio track %d", *req.AudioTrack)
		}
		sources = append(sources, StreamSource{Label: "audio", URL: streamURL})
	}
	if err := d.remuxer.Remux(sources, outputPath); err != nil {
		return result, wrapCategory(CategoryRemuxFailed, fmt.Errorf("remuxing %s: %w", req.OID, err))
	}
	result.outputPath = outputPath
	if fi, err := os.Stat(outputPath); err == nil {
		result.bytes = fi.Size()
	}

	if req.VideoTrack == "" && req.AudioTrack != nil && *req.AudioTrack < len(catalog.AudioTracks) {
		embedAudioTags(outputPath, title, &catalog.AudioTracks[*req.AudioTrack], d.printer)
	}

	if d.history != nil {
		audioIndex := -1
		if req.AudioTrack != nil {
			audioIndex = *req.AudioTrack
		}
		_, err := d.history.Insert(history.Record{
			OID:        req.OID,
			Title:      title,
			OutputPath: outputPath,
			SourceURL:  req.SourceURL,
			VideoTrack: req.VideoTrack,
			AudioTrack: audioIndex,
			Bytes:      result.bytes,
		})
		if err != nil {
			d.printer.Log(logWarn, fmt.Sprintf("warning: recording download history: %v", err))
		}
	}

	return result, nil
}
