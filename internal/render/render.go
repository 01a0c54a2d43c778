// Package render executes the HTML layouts for each kind of generated page.
//
// Layouts ship embedded in the binary. A layouts directory may replace any
// of them by providing a file with the same relative name.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pixegami/blog/internal/model"
)

//go:embed layouts
var embedded embed.FS

const (
	listLayout     = "list.html"
	postLayout     = "post.html"
	notFoundLayout = "404.html"
	rootTemplate   = "base"
)

var partials = []string{
	"partials/base.html",
	"partials/header.html",
	"partials/footer.html",
	"partials/card.html",
	"partials/pagination.html",
}

// Renderer holds one parsed template set per page kind.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the layouts, preferring files found under overrideDir. An
// empty or missing overrideDir uses the embedded layouts only.
func New(overrideDir string) (*Renderer, error) {
	src := layoutSource{dir: overrideDir}

	common := template.New(rootTemplate)
	for _, name := range partials {
		if err := src.parseInto(common, name); err != nil {
			return nil, err
		}
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{listLayout, postLayout, notFoundLayout} {
		t, err := common.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base layout for %s: %w", name, err)
		}
		if err := src.parseInto(t, name); err != nil {
			return nil, err
		}
		r.pages[name] = t
	}
	return r, nil
}

// List renders one page of the post listing.
func (r *Renderer) List(w io.Writer, page model.ListPage) error {
	return r.execute(w, listLayout, page)
}

// Post renders a post's detail page.
func (r *Renderer) Post(w io.Writer, page model.PostPage) error {
	return r.execute(w, postLayout, page)
}

// NotFound renders the page served for unknown paths.
func (r *Renderer) NotFound(w io.Writer, site model.Site) error {
	return r.execute(w, notFoundLayout, struct{ Site model.Site }{site})
}

// execute renders into a buffer first so a failing template never leaves a
// half-written page behind.
func (r *Renderer) execute(w io.Writer, layout string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.pages[layout].ExecuteTemplate(&buf, rootTemplate, data); err != nil {
		return fmt.Errorf("executing layout %s: %w", layout, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

type layoutSource struct {
	dir string
}

func (s layoutSource) read(name string) ([]byte, error) {
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(name)))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading layout %s: %w", name, err)
		}
	}
	return embedded.ReadFile(path.Join("layouts", name))
}

func (s layoutSource) parseInto(t *template.Template, name string) error {
	data, err := s.read(name)
	if err != nil {
		return fmt.Errorf("reading layout %s: %w", name, err)
	}
	if _, err := t.New(name).Parse(string(data)); err != nil {
		return fmt.Errorf("parsing layout %s: %w", name, err)
	}
	return nil
}
