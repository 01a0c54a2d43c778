package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"posts/hello-world/index.md", "/posts/hello-world"},
		{"hello.md", "/posts/hello"},
		{"posts/2021/deep-dive/index.markdown", "/posts/deep-dive"},
		{"posts/notes.md", "/posts/notes"},
		{"index.md", "/posts/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.rel), "Slug(%q)", tt.rel)
	}
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "Hello World", titleFromName("hello-world"))
	assert.Equal(t, "Snake Case Title", titleFromName("snake_case_title"))
}

func TestLoad_SortedNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/older/index.md", "---\ntitle: Older\ndate: 2020-01-01\n---\nold body\n")
	writeFile(t, dir, "posts/newer/index.md", "---\ntitle: Newer\nsubtitle: Fresh\ndate: 2021-04-06\n---\nnew body\n")
	writeFile(t, dir, "undated.md", "---\ntitle: Undated\n---\nno date\n")

	idx, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	all := idx.All()
	assert.Equal(t, "/posts/newer", all[0].Slug)
	assert.Equal(t, "/posts/older", all[1].Slug)
	assert.Equal(t, "/posts/undated", all[2].Slug)

	assert.Equal(t, "Fresh", all[0].Subtitle)
	assert.Equal(t, time.Date(2021, 4, 6, 0, 0, 0, 0, time.UTC), all[0].Date)
	assert.Equal(t, "04/06/2021", all[0].DisplayDate())
	assert.True(t, all[2].Date.IsZero())
	assert.Equal(t, "", all[2].DisplayDate())
}

func TestLoad_RendersMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/my-post/index.md", `---
title: My Post
date: 2021-01-02
---
# Hello World

Some *emphasis* here.

![cat](./cat.png)
![remote](https://example.com/dog.png)

`+"```go\nfmt.Println(\"hi\")\n```\n")
	writeFile(t, dir, "posts/my-post/cat.png", "not really a png")

	idx, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)

	post, err := idx.BySlug("/posts/my-post")
	require.NoError(t, err)

	html := string(post.HTML)
	assert.Contains(t, html, `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, html, "<em>emphasis</em>")
	assert.Contains(t, html, `src="/posts/my-post/cat.png"`)
	assert.Contains(t, html, `src="https://example.com/dog.png"`)
	assert.Contains(t, html, `class="language-go"`)

	assert.Equal(t, []string{"cat.png"}, post.Assets)
	assert.Equal(t, filepath.Join(dir, "posts", "my-post"), post.AssetDir)
	assert.NotContains(t, post.Excerpt, "Println")
	assert.True(t, strings.HasPrefix(post.Excerpt, "Hello World Some emphasis here."))
}

func TestLoad_TitleFallbackAndPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/first-steps.md", "Just a body, no front-matter.\n")

	idx, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)

	post, err := idx.BySlug("/posts/first-steps")
	require.NoError(t, err)
	assert.Equal(t, "First Steps", post.Title)
	assert.Empty(t, post.Assets)
	assert.Equal(t, 1, post.TimeToRead)
}

func TestLoad_DuplicateSlug(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/2020/same/index.md", "---\ntitle: A\n---\n")
	writeFile(t, dir, "posts/2021/same/index.md", "---\ntitle: B\n---\n")

	_, err := NewLoader(nil).Load(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSlug))
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(nil).Load(ctx, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIndex_BySlugAndNeighbours(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "---\ndate: 2021-01-03\n---\n")
	writeFile(t, dir, "b.md", "---\ndate: 2021-01-02\n---\n")
	writeFile(t, dir, "c.md", "---\ndate: 2021-01-01\n---\n")

	idx, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)

	newer, older := idx.Neighbours("/posts/b")
	require.NotNil(t, newer)
	require.NotNil(t, older)
	assert.Equal(t, "/posts/a", newer.Slug)
	assert.Equal(t, "/posts/c", older.Slug)

	newer, older = idx.Neighbours("/posts/a")
	assert.Nil(t, newer)
	assert.Equal(t, "/posts/b", older.Slug)

	_, err = idx.BySlug("/posts/zzz")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestExcerpt(t *testing.T) {
	short := "a short text"
	assert.Equal(t, short, excerpt(short))

	long := strings.Repeat("word ", 60)
	got := excerpt(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), excerptLength+1)
	assert.False(t, strings.Contains(got, "wor…"))
}

func TestTimeToRead(t *testing.T) {
	assert.Equal(t, 1, timeToRead(0))
	assert.Equal(t, 1, timeToRead(265))
	assert.Equal(t, 2, timeToRead(400))
	assert.Equal(t, 4, timeToRead(1000))
}

func TestLoad_SingleFilePostPublishesReferencedImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/hello.md", "---\ntitle: Hello\n---\n![pic](pic.png)\n![again](./pic.png)\n![gone](missing.png)\n![up](../outside.png)\n")
	writeFile(t, dir, "posts/pic.png", "png")
	writeFile(t, dir, "posts/unrelated.png", "png")
	writeFile(t, dir, "outside.png", "png")

	idx, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)
	post, err := idx.BySlug("/posts/hello")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "posts"), post.AssetDir)
	assert.Equal(t, []string{"pic.png"}, post.Assets)
	html := string(post.HTML)
	assert.Contains(t, html, `src="/posts/hello/pic.png"`)
	assert.Contains(t, html, `src="../outside.png"`)
}

func TestLoad_NestedBundlesOwnTheirAssets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "posts/a/index.md", "---\ntitle: A\n---\n")
	writeFile(t, dir, "posts/a/a.png", "png")
	writeFile(t, dir, "posts/a/extra/diagram.png", "png")
	writeFile(t, dir, "posts/a/b/index.md", "---\ntitle: B\n---\n")
	writeFile(t, dir, "posts/a/b/b.png", "png")

	idx, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)

	a, err := idx.BySlug("/posts/a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.png", "extra/diagram.png"}, a.Assets)

	b, err := idx.BySlug("/posts/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png"}, b.Assets)
}
