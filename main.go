package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ubigrab/ubigrab/internal/config"
	"github.com/ubigrab/ubigrab/internal/downloader"
	"github.com/ubigrab/ubigrab/internal/history"
)

func main() {
	var opts downloader.Options
	var configPath, historyPath string
	var listHistory int

	flag.StringVar(&configPath, "config", "", "config file path (default: ./config.json, then the user config dir)")
	flag.StringVar(&opts.Dir, "dir", ".", "destination directory for downloaded files")
	flag.StringVar(&opts.Ext, "ext", "", "output container extension (default .mp4, or .mp3 with -audio-only)")
	flag.StringVar(&opts.VideoTrack, "video", "", "video track name (e.g. 720p); skips the interactive menu")
	flag.IntVar(&opts.AudioTrack, "audio", -1, "audio track index; -1 auto-selects the first available track")
	flag.BoolVar(&opts.AudioOnly, "audio-only", false, "download only the audio track")
	flag.BoolVar(&opts.ListOnly, "list", false, "print the track catalog and exit without downloading")
	flag.BoolVar(&opts.JSON, "json", false, "emit JSON output on stdout (suppresses human-readable status)")
	flag.BoolVar(&opts.Quiet, "quiet", false, "suppress status output (errors still shown)")
	flag.DurationVar(&opts.Timeout, "timeout", time.Minute, "per-request HTTP timeout")
	flag.StringVar(&historyPath, "history", "", "sqlite download history file (empty disables history)")
	flag.IntVar(&listHistory, "list-history", 0, "print the last N history records and exit (-1 for all)")
	flag.Parse()

	if opts.JSON {
		opts.Quiet = true
	}
	if opts.Ext == "" {
		if opts.AudioOnly {
			opts.Ext = ".mp3"
		} else {
			opts.Ext = ".mp4"
		}
	}
	if !strings.HasPrefix(opts.Ext, ".") {
		opts.Ext = "." + opts.Ext
	}

	if listHistory != 0 {
		os.Exit(printHistory(historyPath, listHistory, opts.JSON))
	}

	urls := flag.Args()
	if len(urls) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <url> [url...]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var hist *history.DB
	if historyPath != "" {
		hist, err = history.Open(historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer hist.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := downloader.NewClient(cfg.Server, cfg.APIKey, opts.Timeout, cfg.Verify)
	dl := downloader.New(client, nil, hist, opts)
	defer downloader.CloseIdleConnections()

	// Each URL gets its own failure boundary: an error is reported and the
	// batch moves on. Only an interrupt stops the loop.
	exitCode := 0
	for i, url := range urls {
		if ctx.Err() != nil {
			break
		}
		err := dl.Process(ctx, url, i+1, len(urls))
		if err == nil {
			continue
		}
		if code := downloader.ExitCode(err); code > exitCode {
			exitCode = code
		}
		if opts.JSON {
			writeJSONError(url, err)
		} else if !downloader.IsReported(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	dl.Summary(len(urls))

	if ctx.Err() != nil {
		exitCode = 130
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func writeJSONError(url string, err error) {
	payload := struct {
		Type     string `json:"type"`
		URL      string `json:"url,omitempty"`
		Category string `json:"category"`
		Error    string `json:"error"`
	}{
		Type:     "error",
		URL:      url,
		Category: string(downloader.CategoryOf(err)),
		Error:    err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func printHistory(path string, limit int, asJSON bool) int {
	if path == "" {
		fmt.Fprintln(os.Stderr, "error: -list-history requires -history")
		return 1
	}
	hist, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer hist.Close()

	records, err := hist.List(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		for _, rec := range records {
			payload := struct {
				Type       string    `json:"type"`
				OID        string    `json:"oid"`
				Title      string    `json:"title"`
				Output     string    `json:"output"`
				SourceURL  string    `json:"source_url"`
				VideoTrack string    `json:"video_track,omitempty"`
				AudioTrack int       `json:"audio_track"`
				Bytes      int64     `json:"bytes"`
				CreatedAt  time.Time `json:"created_at"`
			}{
				Type:       "history",
				OID:        rec.OID,
				Title:      rec.Title,
				Output:     rec.OutputPath,
				SourceURL:  rec.SourceURL,
				VideoTrack: rec.VideoTrack,
				AudioTrack: rec.AudioTrack,
				Bytes:      rec.Bytes,
				CreatedAt:  rec.CreatedAt,
			}
			_ = enc.Encode(payload)
		}
		return 0
	}

	for _, rec := range records {
		fmt.Printf("%s  %-28s %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Title, rec.OutputPath)
	}
	return 0
}
