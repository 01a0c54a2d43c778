package content

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	excerptLength  = 140
	wordsPerMinute = 265
)

var (
	slugKey   = parser.NewContextKey()
	imagesKey = parser.NewContextKey()
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(assetPathTransformer{}, 500)),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
}

// rendered is the output of converting one Markdown body. Images lists the
// relative image references, cleaned and relative to the source file.
type rendered struct {
	HTML      string
	PlainText string
	Images    []string
}

func render(md goldmark.Markdown, body []byte, slug string) (rendered, error) {
	pc := parser.NewContext()
	pc.Set(slugKey, slug)
	var images []string
	pc.Set(imagesKey, &images)

	doc := md.Parser().Parse(text.NewReader(body), parser.WithContext(pc))

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, body, doc); err != nil {
		return rendered{}, err
	}
	return rendered{HTML: buf.String(), PlainText: plainText(doc, body), Images: images}, nil
}

// assetPathTransformer points relative image references at the post's own
// URL directory, where its co-located assets are published, and records
// them so the loader can publish them. References that climb out of the
// source directory are left alone.
type assetPathTransformer struct{}

func (assetPathTransformer) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	slug, _ := pc.Get(slugKey).(string)
	if slug == "" {
		return
	}
	images, _ := pc.Get(imagesKey).(*[]string)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			ref, ok := localRef(string(img.Destination))
			if !ok {
				return ast.WalkContinue, nil
			}
			img.Destination = []byte(path.Join(slug, ref))
			if images != nil {
				*images = append(*images, ref)
			}
		}
		return ast.WalkContinue, nil
	})
}

func isRelativeRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "#") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// localRef returns the cleaned file path of a relative reference that stays
// inside the post's own directory.
func localRef(ref string) (string, bool) {
	if !isRelativeRef(ref) {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" {
		return "", false
	}
	p := path.Clean(u.Path)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}

// plainText flattens the document's prose, skipping code blocks.
func plainText(doc ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// excerpt cuts s at a word boundary no later than excerptLength runes.
func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptLength {
		return s
	}
	cut := string(runes[:excerptLength])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func timeToRead(words int) int {
	minutes := (words + wordsPerMinute/2) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
