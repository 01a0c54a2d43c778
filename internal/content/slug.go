package content

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SlugPrefix is the URL directory every post's detail page lives under.
const SlugPrefix = "/posts/"

// Slug derives a post's URL path from its source location relative to the
// content directory. Only the last path segment survives, so
// "posts/2021/hello-world/index.md" and "hello-world.md" both map to
// "/posts/hello-world".
func Slug(rel string) string {
	return SlugPrefix + slugTail(rel)
}

func slugTail(rel string) string {
	p := filepath.ToSlash(rel)
	p = strings.TrimSuffix(p, path.Ext(p))
	p = strings.Trim(p, "/")
	if p == "index" {
		return ""
	}
	p = strings.TrimSuffix(p, "/index")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// titleFromName builds a readable title out of a file or directory name.
func titleFromName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(strings.TrimSpace(name))
}
