package model

import (
	"html/template"
	"time"
)

// Post is a single Markdown document together with everything derived from
// it at build time.
type Post struct {
	Title       string
	Subtitle    string
	Date        time.Time
	Slug        string
	SourcePath  string
	HTML        template.HTML
	Excerpt     string
	WordCount   int
	TimeToRead  int
	Frontmatter map[string]interface{}
	// Assets are files stored next to the post's Markdown source, relative
	// to AssetDir.
	AssetDir string
	Assets   []string
}

// DisplayDate is the date format shown on post cards.
func (p *Post) DisplayDate() string {
	if p.Date.IsZero() {
		return ""
	}
	return p.Date.Format("01/02/2006")
}

// Site holds the site-wide values every template can reach.
type Site struct {
	Title       string
	Description string
	Author      string
	Owner       string
	BaseURL     string
	Year        int
}
