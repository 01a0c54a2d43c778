package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixegami/blog/internal/model"
	"github.com/pixegami/blog/internal/paginate"
)

var testSite = model.Site{Title: "Pixegami Blog", Owner: "Pixegami", Year: 2021}

func mustPagination(t *testing.T, current, total int) paginate.Pagination {
	t.Helper()
	p, err := paginate.New(current, total)
	require.NoError(t, err)
	return p
}

func TestList_FirstPageHasNoPrevLink(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	posts := []*model.Post{
		{Title: "First", Subtitle: "the beginning", Slug: "/posts/first", Date: time.Date(2019, 4, 6, 0, 0, 0, 0, time.UTC)},
		{Title: "Second", Slug: "/posts/second"},
	}
	var buf bytes.Buffer
	require.NoError(t, r.List(&buf, model.ListPage{Site: testSite, Posts: posts, Pagination: mustPagination(t, 1, 2)}))

	out := buf.String()
	assert.Contains(t, out, `<a href="/">Pixegami Blog</a>`)
	assert.Contains(t, out, `href="/posts/first"`)
	assert.Contains(t, out, "the beginning")
	assert.Contains(t, out, "04/06/2019")
	assert.Contains(t, out, "Page <span>1</span> of <span>2</span>")
	assert.NotContains(t, out, `class="page-prev"`)
	assert.Contains(t, out, `href="/blog/2"`)
	assert.Contains(t, out, "&copy; 2021 Pixegami")
}

func TestList_LastPageHasNoNextLink(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.List(&buf, model.ListPage{Site: testSite, Pagination: mustPagination(t, 2, 2)}))

	out := buf.String()
	assert.Contains(t, out, `class="page-prev" rel="prev" href="/"`)
	assert.NotContains(t, out, `class="page-next"`)
}

func TestPost(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	post := &model.Post{Title: "Hello", Slug: "/posts/hello", HTML: "<p>raw <strong>html</strong></p>", TimeToRead: 3}
	older := &model.Post{Title: "Before", Slug: "/posts/before"}

	var buf bytes.Buffer
	require.NoError(t, r.Post(&buf, model.PostPage{Site: testSite, Post: post, Older: older}))

	out := buf.String()
	assert.Contains(t, out, "<title>Hello | Pixegami Blog</title>")
	assert.Contains(t, out, "<p>raw <strong>html</strong></p>")
	assert.Contains(t, out, "3 min read")
	assert.Contains(t, out, `href="/posts/before"`)
	assert.NotContains(t, out, "post-newer")
}

func TestNotFound(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.NotFound(&buf, testSite))
	assert.Contains(t, buf.String(), "Page not found")
}

func TestNew_OverrideLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "partials"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partials", "footer.html"),
		[]byte(`{{define "footer"}}<footer>custom footer</footer>{{end}}`), 0o644))

	r, err := New(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.NotFound(&buf, testSite))
	assert.Contains(t, buf.String(), "custom footer")
	assert.NotContains(t, buf.String(), "&copy;")
}

func TestNew_BrokenOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.html"), []byte(`{{define "main"}}{{.Nope`), 0o644))

	_, err := New(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post.html")
}
