// Package feed writes the RSS feed and sitemap for the generated site.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/pixegami/blog/internal/model"
	"github.com/pixegami/blog/internal/paginate"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// AbsoluteURL joins a site-relative path onto base.
func AbsoluteURL(base, p string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", base)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(p, "/")
	return u.String(), nil
}

// WriteRSS encodes an RSS 2.0 channel holding every post.
func WriteRSS(w io.Writer, site model.Site, posts []*model.Post) error {
	home, err := AbsoluteURL(site.BaseURL, "/")
	if err != nil {
		return err
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link, err := AbsoluteURL(site.BaseURL, p.Slug)
		if err != nil {
			return err
		}
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			GUID:        link,
		}
		if !p.Date.IsZero() {
			item.PubDate = p.Date.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	doc := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        home,
			Description: site.Description,
			Items:       items,
		},
	}
	return encode(w, doc)
}

// WriteSitemap lists every list page and post page.
func WriteSitemap(w io.Writer, site model.Site, posts []*model.Post, listPages int) error {
	urls := make([]sitemapURL, 0, listPages+len(posts))
	for k := 1; k <= listPages; k++ {
		loc, err := AbsoluteURL(site.BaseURL, paginate.PagePath(k))
		if err != nil {
			return err
		}
		urls = append(urls, sitemapURL{Loc: loc})
	}
	for _, p := range posts {
		loc, err := AbsoluteURL(site.BaseURL, p.Slug)
		if err != nil {
			return err
		}
		u := sitemapURL{Loc: loc}
		if !p.Date.IsZero() {
			u.LastMod = p.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	return encode(w, sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

func encode(w io.Writer, v interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding xml: %w", err)
	}
	return nil
}
