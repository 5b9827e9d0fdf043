package downloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Printer writes human-readable status lines to stderr. Machine output
// (-json) bypasses it entirely.
type Printer struct {
	quiet      bool
	color      bool
	columns    int
	titleWidth int
}

func newPrinter(opts Options) *Printer {
	columns := terminalColumns()
	if columns <= 0 {
		columns = 100
	}

	titleWidth := columns - 44
	if titleWidth < 20 {
		titleWidth = 20
	}
	if titleWidth > 60 {
		titleWidth = 60
	}

	return &Printer{
		quiet:      opts.Quiet,
		color:      supportsColor(),
		columns:    columns,
		titleWidth: titleWidth,
	}
}

func (p *Printer) Prefix(index, total int, title string) string {
	if total <= 0 {
		total = 1
	}
	width := len(strconv.Itoa(total))
	idx := fmt.Sprintf("%*d/%d", width, index, total)
	return fmt.Sprintf("[%s] %-*s", idx, p.titleWidth, truncateText(title, p.titleWidth))
}

func (p *Printer) ItemResult(prefix string, result downloadResult, err error) {
	if err == nil && p.quiet {
		return
	}

	statusText := "OK"
	statusColor := colorGreen
	detail := fmt.Sprintf("%s %s", padLeft(humanBytes(result.bytes), 9), result.outputPath)

	if err != nil {
		statusText = "FAIL"
		statusColor = colorRed
		detail = err.Error()
	}

	status := p.colorize(statusText, statusColor)
	maxDetail := p.columns - len(prefix) - len(statusText) - 3
	if maxDetail < 0 {
		maxDetail = 0
	}
	detail = truncateText(detail, maxDetail)

	fmt.Fprintf(os.Stderr, "%s %s %s\n", prefix, status, detail)
}

func (p *Printer) Summary(total, ok, failed int, bytes int64) {
	if p.quiet || total <= 1 {
		return
	}
	okLabel := p.colorize("OK", colorGreen)
	failLabel := p.colorize("FAIL", colorRed)
	fmt.Fprintf(os.Stderr, "Summary: %s %d | %s %d | TOTAL %d | SIZE %s\n",
		okLabel, ok, failLabel, failed, total, humanBytes(bytes))
}

type logLevel int

const (
	logInfo logLevel = iota
	logWarn
)

func (p *Printer) Log(level logLevel, message string) {
	if p.quiet {
		return
	}
	if level == logWarn {
		message = p.colorize(message, colorYellow)
	}
	fmt.Fprintln(os.Stderr, message)
}

func (p *Printer) colorize(text, color string) string {
	if !p.color || color == "" {
		return text
	}
	return color + text + colorReset
}

func padLeft(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat(" ", width-len(value)) + value
}

func truncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for n >= unit*div && exp < 3 {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f%s", value, suffix[exp])
}

func terminalColumns() int {
	if columns := os.Getenv("COLUMNS"); columns != "" {
		if val, err := strconv.Atoi(columns); err == nil && val > 0 {
			return val
		}
	}
	return 0
}

func supportsColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

const (
	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
)
