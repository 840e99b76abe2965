package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oscarbenjamin/txt2bb/internal/question"
)

// TestRenderPreview verifies the page lists questions with marked answers.
func TestRenderPreview(t *testing.T) {
	set := question.Set{Source: "bank.txt", Questions: []question.Question{
		{
			Type:   question.MultipleChoice,
			Prompt: "Is 1 < 2?\nSee @{plot.png}@",
			Answers: []question.Answer{
				{Label: question.LabelCorrect, Text: "yes"},
				{Label: question.LabelIncorrect, Text: "no"},
			},
			Block: 1,
		},
		{Type: question.Essay, Prompt: "Discuss $x^2$", Block: 2, Variant: 1},
	}}
	data, err := Render(set, Options{Title: "Week <1>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(data)
	for _, want := range []string{
		"<title>Week &lt;1&gt;</title>",
		"<p class=\"meta\">2 questions</p>",
		"<div class=\"prompt\">Is 1 &lt; 2?<br>See <img src=\"plot.png\" alt=\"plot.png\"></div>",
		"<li class=\"correct\"><span class=\"label\">correct</span><span class=\"text\">yes</span></li>",
		"<li class=\"incorrect\"><span class=\"label\">incorrect</span><span class=\"text\">no</span></li>",
		"<li class=\"question\" id=\"q1\" data-type=\"MC\">",
		"<span class=\"origin\">block 2, variant 2</span>",
		"Discuss $x^2$",
		MathJaxURL,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in page:\n%s", want, html)
		}
	}
}

// TestRenderDefaultTitle verifies an untitled page still has a heading.
func TestRenderDefaultTitle(t *testing.T) {
	data, err := Render(question.Set{}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(data), "<h1>Question bank preview</h1>") {
		t.Fatalf("expected default title, got %s", data)
	}
}

// TestPageStopsOnCancelledContext verifies rendering honours the context.
func TestPageStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := Page(question.Set{}, Options{}).Render(ctx, &buf)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
