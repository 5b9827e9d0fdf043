package downloader

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a failure so the CLI can report it and pick an
// exit code. Every error that crosses a package boundary carries one.
type ErrorCategory string

const (
	CategoryUnrecognizedURL    ErrorCategory = "unrecognized_url"
	CategoryServerUnreachable  ErrorCategory = "server_unreachable"
	CategoryMalformedResponse  ErrorCategory = "malformed_response"
	CategoryInvalidDestination ErrorCategory = "invalid_destination"
	CategoryNoTrackSelected    ErrorCategory = "no_track_selected"
	CategoryNoVideoAvailable   ErrorCategory = "no_video_available"
	CategoryNoAudioAvailable   ErrorCategory = "no_audio_available"
	CategoryInvalidVideoTrack  ErrorCategory = "invalid_video_track"
	CategoryInvalidAudioTrack  ErrorCategory = "invalid_audio_track"
	CategoryRemuxFailed        ErrorCategory = "remux_failed"
)

// CategorizedError pairs a category with the underlying cause. The cause is
// kept intact for diagnostics and errors.Is/As chains.
type CategorizedError struct {
	Category ErrorCategory
	Err      error
}

func (e CategorizedError) Error() string {
	return e.Err.Error()
}

func (e CategorizedError) Unwrap() error {
	return e.Err
}

func wrapCategory(category ErrorCategory, err error) error {
	if err == nil {
		return nil
	}
	return CategorizedError{Category: category, Err: err}
}

func categoryErrorf(category ErrorCategory, format string, args ...any) error {
	return CategorizedError{Category: category, Err: fmt.Errorf(format, args...)}
}

// CategoryOf returns the category of err, or "" when it carries none.
func CategoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// ExitCode maps an error to the process exit status. Each category gets a
// distinct code so scripts can tell the failure modes apart.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CategoryOf(err) {
	case CategoryUnrecognizedURL:
		return 2
	case CategoryServerUnreachable:
		return 3
	case CategoryMalformedResponse:
		return 4
	case CategoryInvalidDestination:
		return 5
	case CategoryNoTrackSelected:
		return 6
	case CategoryNoVideoAvailable:
		return 7
	case CategoryNoAudioAvailable:
		return 8
	case CategoryInvalidVideoTrack:
		return 9
	case CategoryInvalidAudioTrack:
		return 10
	case CategoryRemuxFailed:
		return 11
	default:
		return 1
	}
}

type reportedError struct {
	err error
}

func (e reportedError) Error() string {
	return e.err.Error()
}

func (e reportedError) Unwrap() error {
	return e.err
}

func markReported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// IsReported returns true if the error has already been printed to stderr.
func IsReported(err error) bool {
	var re reportedError
	return errors.As(err, &re)
}
