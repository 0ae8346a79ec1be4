// Package guide loads the player guide shown in game.
package guide

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	staticfiles "pdoom/static"
)

// Load reads the guide at path. When path is empty or unreadable the bundled guide is
// returned; a read failure other than a missing file is reported alongside it.
func Load(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return staticfiles.Guide(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return staticfiles.Guide(), nil
		}
		return staticfiles.Guide(), fmt.Errorf("read guide: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return staticfiles.Guide(), nil
	}
	return string(b), nil
}

type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sections splits markdown into pages at top-level "# " headings. Text before the first
// heading becomes an untitled section.
func Sections(text string) []Section {
	var (
		out  []Section
		cur  *Section
		body []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if cur.Title != "" || cur.Body != "" {
			out = append(out, *cur)
		}
		body = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			flush()
			cur = &Section{Title: strings.TrimSpace(title)}
			continue
		}
		if cur == nil {
			cur = &Section{}
		}
		body = append(body, line)
	}
	flush()
	return out
}

// HTML renders the guide markdown. Raw HTML in the source is not passed through.
func HTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render guide: %w", err)
	}
	return buf.String(), nil
}
