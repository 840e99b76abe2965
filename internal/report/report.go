// Package report renders a question set as an HTML proofreading page.
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/oscarbenjamin/txt2bb/internal/question"
)

// MathJaxURL is the script loaded by the preview to typeset math.
const MathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js"

// Options configures the preview page.
type Options struct {
	Title string
}

// Render produces the preview page for set.
func Render(set question.Set, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Page(set, opts).Render(context.Background(), &buf); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}
