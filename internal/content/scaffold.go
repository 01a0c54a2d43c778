package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v2"
)

// ErrPostExists is returned when scaffolding would overwrite a post.
var ErrPostExists = errors.New("post already exists")

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// NewPost writes posts/{slug}/index.md under contentDir with front-matter
// for title, subtitle and date, and returns its path.
func NewPost(contentDir, title, subtitle string, date time.Time) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no characters usable in a slug", title)
	}

	path := filepath.Join(contentDir, "posts", slug, "index.md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrPostExists, path)
	}

	fm := yaml.MapSlice{
		{Key: "title", Value: title},
		{Key: "subtitle", Value: subtitle},
		{Key: "date", Value: date.Format("2006-01-02")},
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding front-matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString("Write something worth reading.\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating post directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
