package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// sanitizeTitle makes a remote title safe to use as a file name: every
// character the host filesystem forbids becomes a single space, and
// surrounding whitespace is trimmed.
func sanitizeTitle(title string) string {
	return strings.TrimSpace(forbiddenChars.ReplaceAllString(title, " "))
}

// availablePath returns <dir>/<title><ext>, or the first
// "<title> (n)<ext>" (counting from 0) that does not exist yet. The
// check-then-create window is accepted: this tool runs single-process.
func availablePath(dir, title, ext string) (string, error) {
	candidate := filepath.Join(dir, title+ext)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	for i := 0; i < 10000; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", title, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", categoryErrorf(CategoryInvalidDestination, "unable to find an available filename for %q in %s", title, dir)
}
