package html

import (
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce   sync.Once
	ugcPolicy *bluemonday.Policy
)

// Markdown renders a step description to HTML sanitised with the UGC policy.
func Markdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	ugcOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	out := markdown.ToHTML([]byte(src), p, renderer)
	return strings.TrimSpace(ugcPolicy.Sanitize(string(out)))
}
