package content

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pixegami/blog/internal/model"
)

var (
	// ErrNotFound is returned when no post has the requested slug.
	ErrNotFound = errors.New("post not found")
	// ErrDuplicateSlug is returned when two source files map to one URL.
	ErrDuplicateSlug = errors.New("duplicate slug")
)

// Index is the queryable set of posts, ordered newest first.
type Index struct {
	posts  []*model.Post
	bySlug map[string]int
}

// NewIndex sorts posts by date, newest first, and indexes them by slug.
// Undated posts sort after dated ones; ties break on slug.
func NewIndex(posts []*model.Post) (*Index, error) {
	sorted := make([]*model.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Date.IsZero() != b.Date.IsZero():
			return b.Date.IsZero()
		case !a.Date.Equal(b.Date):
			return a.Date.After(b.Date)
		default:
			return a.Slug < b.Slug
		}
	})

	idx := &Index{posts: sorted, bySlug: make(map[string]int, len(sorted))}
	for i, p := range sorted {
		if prev, ok := idx.bySlug[p.Slug]; ok {
			return nil, fmt.Errorf("%w %s: %s and %s", ErrDuplicateSlug, p.Slug, sorted[prev].SourcePath, p.SourcePath)
		}
		idx.bySlug[p.Slug] = i
	}
	return idx, nil
}

// All returns every post, newest first. The slice must not be modified.
func (x *Index) All() []*model.Post {
	return x.posts
}

// Len returns the number of posts.
func (x *Index) Len() int {
	return len(x.posts)
}

// BySlug returns the post published at slug.
func (x *Index) BySlug(slug string) (*model.Post, error) {
	i, ok := x.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return x.posts[i], nil
}

// Neighbours returns the posts published right after (newer) and right
// before (older) the post at slug.
func (x *Index) Neighbours(slug string) (newer, older *model.Post) {
	i, ok := x.bySlug[slug]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		newer = x.posts[i-1]
	}
	if i < len(x.posts)-1 {
		older = x.posts[i+1]
	}
	return newer, older
}
