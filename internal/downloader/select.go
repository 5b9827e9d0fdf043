package downloader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// trackAt is the selection contract: given the options and an index chosen
// elsewhere (flag, prompt, TUI), return the option. It does not care where
// the index came from.
func trackAt(options []string, index int) (string, error) {
	if index < 0 || index >= len(options) {
		return "", fmt.Errorf("index %d out of range (have %d options)", index, len(options))
	}
	return options[index], nil
}

// defaultAudioTrack returns the auto-selected audio track index: the first
// track when any exist, -1 otherwise. Auto-selection is CLI convenience,
// not part of the Download contract.
func defaultAudioTrack(tracks []AudioTrack) int {
	if len(tracks) == 0 {
		return -1
	}
	return 0
}

func audioTrackLabel(track AudioTrack, index int) string {
	parts := make([]string, 0, 2)
	if track.Language != nil && *track.Language != "" {
		parts = append(parts, *track.Language)
	}
	if track.Title != nil && *track.Title != "" {
		parts = append(parts, *track.Title)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("audio %d", index)
	}
	return strings.Join(parts, " - ")
}

// promptTrackIndex shows a numbered menu on stderr and reads the choice
// from stdin. Menu entries are 1-based; the returned index is 0-based.
func promptTrackIndex(options []string, prompt string) (int, error) {
	for i, option := range options {
		fmt.Fprintf(os.Stderr, "%s : %d\n", option, i+1)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return -1, err
		}
		choice, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && choice >= 1 && choice <= len(options) {
			return choice - 1, nil
		}
		fmt.Fprintf(os.Stderr, "bad option. options: %s\n", strings.Join(options, ", "))
	}
}

func isTerminal(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
