package model

import "github.com/pixegami/blog/internal/paginate"

// ListPage is the data behind one page of the post listing.
type ListPage struct {
	Site       Site
	Posts      []*Post
	Pagination paginate.Pagination
}

// PostPage is the data behind a single post's detail page. Newer and Older
// are nil at either end of the timeline.
type PostPage struct {
	Site  Site
	Post  *Post
	Newer *Post
	Older *Post
}
