package transform

import (
	"regexp"
	"strings"
	"time"
)

const untitledSuffix = "_無題のメモ"

var (
	invalidTitleChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	// The CLI is asked for "YYYY-MM-DD HH:mm_..." titles; that prefix is
	// kept as-is so the colon in HH:mm survives.
	timestampPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}`)
)

// ExtractTitle returns the first level-one heading of markdown with
// filename-unsafe characters removed, or a dated placeholder.
func ExtractTitle(markdown string, now time.Time) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ") {
			continue
		}
		title := strings.TrimSpace(trimmed[2:])
		if title == "" {
			continue
		}
		prefix := timestampPrefix.FindString(title)
		title = prefix + invalidTitleChars.ReplaceAllString(title[len(prefix):], "")
		if strings.TrimSpace(title) != "" {
			return title
		}
	}
	return now.Format("2006-01-02 15:04") + untitledSuffix
}
