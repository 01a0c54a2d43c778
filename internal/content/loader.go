// Package content reads Markdown posts from disk and answers the build-time
// queries the page generator needs.
package content

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/pixegami/blog/internal/model"
)

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Loader turns a content directory into posts.
type Loader struct {
	md  goldmark.Markdown
	log *zap.Logger
}

// NewLoader returns a Loader that reports recoverable problems to log.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{md: newMarkdown(), log: log}
}

// Load walks dir for Markdown files and returns an Index over them.
func (l *Loader) Load(ctx context.Context, dir string) (*Index, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content directory %q: %w", dir, err)
	}

	var posts []*model.Post
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("accessing %s: %w", path, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		post, err := l.loadFile(path, rel)
		if err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	l.log.Debug("content loaded", zap.String("dir", dir), zap.Int("posts", len(posts)))
	return NewIndex(posts)
}

func (l *Loader) loadFile(path, rel string) (*model.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	slug := Slug(rel)
	if slug == SlugPrefix {
		return nil, fmt.Errorf("cannot derive a slug from %s", rel)
	}

	fm := map[string]interface{}{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		l.log.Warn("unreadable front-matter, treating file as plain markdown",
			zap.String("path", path), zap.Error(err))
		body = raw
		fm = map[string]interface{}{}
	}

	out, err := render(l.md, body, slug)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", path, err)
	}

	words := len(strings.Fields(out.PlainText))
	post := &model.Post{
		Title:       stringField(fm, "title"),
		Subtitle:    stringField(fm, "subtitle"),
		Slug:        slug,
		SourcePath:  path,
		HTML:        template.HTML(out.HTML),
		Excerpt:     excerpt(out.PlainText),
		WordCount:   words,
		TimeToRead:  timeToRead(words),
		Frontmatter: fm,
	}
	if post.Title == "" {
		post.Title = titleFromName(slugTail(rel))
	}

	date, ok := parseDate(fm["date"])
	if !ok {
		l.log.Warn("missing or unparseable date, post will sort last",
			zap.String("path", path), zap.Any("date", fm["date"]))
	}
	post.Date = date

	post.AssetDir = filepath.Dir(path)
	if isBundle(rel) {
		assets, err := bundleAssets(post.AssetDir)
		if err != nil {
			return nil, err
		}
		post.Assets = assets
	} else {
		post.Assets = l.referencedAssets(post.AssetDir, out.Images, path)
	}

	return post, nil
}

// referencedAssets returns the images a single-file post references that
// exist next to it. Such a post shares its directory, so only what it links
// to is published under its slug.
func (l *Loader) referencedAssets(dir string, refs []string, source string) []string {
	seen := make(map[string]bool, len(refs))
	var assets []string
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(ref)))
		if err != nil || info.IsDir() {
			l.log.Warn("referenced image not found next to post",
				zap.String("path", source), zap.String("image", ref))
			continue
		}
		assets = append(assets, ref)
	}
	return assets
}

func stringField(fm map[string]interface{}, key string) string {
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func parseDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		for _, format := range dateFormats {
			if t, err := time.Parse(format, strings.TrimSpace(d)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// isBundle reports whether a post owns its directory, i.e. is an index file.
func isBundle(rel string) bool {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base)) == "index" && filepath.Dir(rel) != "."
}

// hasIndex reports whether dir holds its own bundle index file.
func hasIndex(dir string) bool {
	for _, name := range []string{"index.md", "index.markdown"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// bundleAssets lists the non-Markdown files below a post bundle directory,
// leaving out nested bundles, which publish their own.
func bundleAssets(dir string) ([]string, error) {
	var assets []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && hasIndex(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdown(d.Name()) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		assets = append(assets, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing assets in %s: %w", dir, err)
	}
	return assets, nil
}
