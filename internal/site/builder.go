// Package site generates the complete static blog into an output directory.
package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pixegami/blog/internal/assets"
	"github.com/pixegami/blog/internal/config"
	"github.com/pixegami/blog/internal/content"
	"github.com/pixegami/blog/internal/feed"
	"github.com/pixegami/blog/internal/model"
	"github.com/pixegami/blog/internal/paginate"
	"github.com/pixegami/blog/internal/render"
)

// Result summarizes one build.
type Result struct {
	Posts         int
	ListPages     int
	StaticFiles   int
	Assets        int
	ResizedImages int
	Files         []string
	Duration      time.Duration
	Warnings      []string
}

// Builder turns the configured content directory into a site.
type Builder struct {
	cfg    *config.Config
	log    *zap.Logger
	loader *content.Loader
	now    func() time.Time
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg *config.Config, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		cfg:    cfg,
		log:    log,
		loader: content.NewLoader(log),
		now:    time.Now,
	}
}

// Site returns the template-facing site metadata.
func (b *Builder) Site() model.Site {
	return model.Site{
		Title:       b.cfg.Site.Title,
		Description: b.cfg.Site.Description,
		Author:      b.cfg.Site.Author,
		Owner:       b.cfg.Site.Owner,
		BaseURL:     b.cfg.Site.BaseURL,
		Year:        b.now().Year(),
	}
}

// Build cleans the output directory and regenerates every page.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := b.now()
	bc := b.cfg.Build
	res := &Result{}

	renderer, err := render.New(bc.LayoutsDir)
	if err != nil {
		return nil, fmt.Errorf("loading layouts: %w", err)
	}

	idx, err := b.loader.Load(ctx, bc.ContentDir)
	if err != nil {
		return nil, err
	}

	b.log.Debug("cleaning output directory", zap.String("dir", bc.OutputDir))
	if err := os.RemoveAll(bc.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to remove output directory '%s': %w", bc.OutputDir, err)
	}
	if err := os.MkdirAll(bc.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", bc.OutputDir, err)
	}

	res.StaticFiles, err = assets.CopyDir(bc.StaticDir, bc.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to copy static assets: %w", err)
	}

	site := b.Site()
	posts := idx.All()
	res.Posts = len(posts)
	res.ListPages = paginate.PageCount(len(posts), bc.PostsPerPage)
	if res.ListPages == 0 {
		res.Warnings = append(res.Warnings, "no posts found; the site has no list pages")
	}

	w := &writer{root: bc.OutputDir}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bc.Workers)

	for _, post := range posts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			newer, older := idx.Neighbours(post.Slug)
			page := model.PostPage{Site: site, Post: post, Newer: newer, Older: older}
			return w.page(post.Slug, func(out io.Writer) error {
				return renderer.Post(out, page)
			})
		})
	}

	for k := 1; k <= res.ListPages; k++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pagination, err := paginate.New(k, res.ListPages)
			if err != nil {
				return err
			}
			from, to := paginate.Window(len(posts), bc.PostsPerPage, k)
			page := model.ListPage{Site: site, Posts: posts[from:to], Pagination: pagination}
			return w.page(paginate.PagePath(k), func(out io.Writer) error {
				return renderer.List(out, page)
			})
		})
	}

	g.Go(func() error {
		return w.file("404.html", func(out io.Writer) error {
			return renderer.NotFound(out, site)
		})
	})

	if site.BaseURL != "" {
		g.Go(func() error {
			return w.file("rss.xml", func(out io.Writer) error {
				return feed.WriteRSS(out, site, posts)
			})
		})
		g.Go(func() error {
			return w.file("sitemap.xml", func(out io.Writer) error {
				return feed.WriteSitemap(out, site, posts, res.ListPages)
			})
		})
	} else {
		res.Warnings = append(res.Warnings, "site.base_url is empty; skipping rss.xml and sitemap.xml")
	}

	publisher := assets.Publisher{MaxWidth: bc.ImageMaxWidth}
	var counts sync.Mutex
	for _, post := range posts {
		for _, name := range post.Assets {
			g.Go(func() error {
				src := filepath.Join(post.AssetDir, filepath.FromSlash(name))
				dst := filepath.Join(bc.OutputDir, filepath.FromSlash(post.Slug), filepath.FromSlash(name))
				resized, err := publisher.Publish(src, dst)
				if err != nil {
					return fmt.Errorf("publishing asset for %s: %w", post.Slug, err)
				}
				counts.Lock()
				res.Assets++
				if resized {
					res.ResizedImages++
				}
				counts.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Files = w.written()
	res.Duration = b.now().Sub(start)
	for _, warning := range res.Warnings {
		b.log.Warn(warning)
	}
	b.log.Info("build finished",
		zap.Int("posts", res.Posts),
		zap.Int("list_pages", res.ListPages),
		zap.Int("files", len(res.Files)),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// writer creates output files and remembers what it wrote.
type writer struct {
	root  string
	mu    sync.Mutex
	files []string
}

// page writes the index.html that serves urlPath.
func (w *writer) page(urlPath string, fill func(io.Writer) error) error {
	rel := strings.TrimPrefix(urlPath, "/")
	return w.file(filepath.Join(filepath.FromSlash(rel), "index.html"), fill)
}

func (w *writer) file(rel string, fill func(io.Writer) error) (err error) {
	target := filepath.Join(w.root, rel)
	if r, err := filepath.Rel(w.root, target); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to write outside output directory: %s", rel)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", target, err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", target, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := fill(f); err != nil {
		return fmt.Errorf("writing '%s': %w", target, err)
	}

	w.mu.Lock()
	w.files = append(w.files, filepath.ToSlash(rel))
	w.mu.Unlock()
	return nil
}

func (w *writer) written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := append([]string(nil), w.files...)
	sort.Strings(files)
	return files
}
