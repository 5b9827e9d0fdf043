package downloader

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{category: CategoryUnrecognizedURL, want: 2},
		{category: CategoryServerUnreachable, want: 3},
		{category: CategoryMalformedResponse, want: 4},
		{category: CategoryInvalidDestination, want: 5},
		{category: CategoryNoTrackSelected, want: 6},
		{category: CategoryNoVideoAvailable, want: 7},
		{category: CategoryNoAudioAvailable, want: 8},
		{category: CategoryInvalidVideoTrack, want: 9},
		{category: CategoryInvalidAudioTrack, want: 10},
		{category: CategoryRemuxFailed, want: 11},
	}
	for _, tt := range tests {
		err := categoryErrorf(tt.category, "boom")
		if got := ExitCode(err); got != tt.want {
			t.Fatalf("ExitCode(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}

	if got := ExitCode(nil); got != 0 {
		t.Fatalf("ExitCode(nil) = %d, want 0", got)
	}
	if got := ExitCode(errors.New("plain")); got != 1 {
		t.Fatalf("ExitCode(plain error) = %d, want 1", got)
	}
}

func TestWrapCategoryKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrapCategory(CategoryServerUnreachable, fmt.Errorf("ubicast server unreachable: %w", cause))

	if got := CategoryOf(err); got != CategoryServerUnreachable {
		t.Fatalf("CategoryOf = %q, want %q", got, CategoryServerUnreachable)
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error lost its cause")
	}
}

func TestCategorySurvivesWrapping(t *testing.T) {
	err := categoryErrorf(CategoryRemuxFailed, "boom")
	wrapped := fmt.Errorf("processing url: %w", err)
	if got := CategoryOf(wrapped); got != CategoryRemuxFailed {
		t.Fatalf("CategoryOf(wrapped) = %q, want %q", got, CategoryRemuxFailed)
	}
}

func TestIsReported(t *testing.T) {
	err := errors.New("boom")
	if IsReported(err) {
		t.Fatal("plain error must not be reported")
	}
	if !IsReported(markReported(err)) {
		t.Fatal("marked error must be reported")
	}
	if markReported(nil) != nil {
		t.Fatal("markReported(nil) must stay nil")
	}
}
