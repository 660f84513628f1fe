// Package assets embeds the built-in word list and parses word files.
package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed vocabulary.txt
var FS embed.FS

// ReadLines returns the non-empty, non-comment lines of r, lowercased and trimmed.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// Vocabulary returns the embedded default word list.
func Vocabulary() ([]string, error) {
	f, err := FS.Open("vocabulary.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}
