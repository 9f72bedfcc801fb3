package report

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/filelock"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Renderer converts report Markdown to HTML.
type Renderer struct {
	markdown goldmark.Markdown
}

// NewRenderer creates a Renderer with table support.
func NewRenderer() *Renderer {
	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	Text  string
}

// Outline lists the headings of a Markdown document in order.
func (rd *Renderer) Outline(source []byte) []Heading {
	doc := rd.markdown.Parser().Parse(text.NewReader(source))
	var out []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			out = append(out, Heading{Level: h.Level, Text: headingText(h, source)})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func headingText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			continue
		}
		sb.WriteString(headingText(c, source))
	}
	return sb.String()
}

// HTML renders r as a standalone page with a navigation list of its sections.
func (rd *Renderer) HTML(r *Report) ([]byte, error) {
	source := []byte(r.Markdown())

	var body bytes.Buffer
	if err := rd.markdown.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Wound evaluation %s</title>\n</head>\n<body>\n<nav>\n<ul>\n", html.EscapeString(r.ID))
	for _, h := range rd.Outline(source) {
		if h.Level == 2 {
			fmt.Fprintf(&page, "<li>%s</li>\n", html.EscapeString(h.Text))
		}
	}
	page.WriteString("</ul>\n</nav>\n<main>\n")
	page.Write(body.Bytes())
	page.WriteString("</main>\n</body>\n</html>\n")
	return page.Bytes(), nil
}

// Save writes report-<id>.md and report-<id>.html into dir and returns their
// paths.
func (rd *Renderer) Save(ctx context.Context, r *Report, dir string) (mdPath, htmlPath string, err error) {
	page, err := rd.HTML(r)
	if err != nil {
		return "", "", err
	}
	mdPath = filepath.Join(dir, "report-"+r.ID+".md")
	htmlPath = filepath.Join(dir, "report-"+r.ID+".html")
	if err := filelock.WriteFile(ctx, mdPath, []byte(r.Markdown())); err != nil {
		return "", "", err
	}
	if err := filelock.WriteFile(ctx, htmlPath, page); err != nil {
		return "", "", err
	}
	return mdPath, htmlPath, nil
}
