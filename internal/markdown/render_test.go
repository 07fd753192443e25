package markdown

import (
	"strings"
	"testing"
)

func TestRender_BasicMarkdown(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("Hello, I'm **GimmyAI**!")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "<strong>GimmyAI</strong>") {
		t.Fatalf("expected bold rendering, got %q", out)
	}
}

func TestRender_AutolinksBareURL(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("see https://example.com/docs for details")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, `<a href="https://example.com/docs"`) {
		t.Fatalf("expected autolink, got %q", out)
	}
}

func TestRender_StripsScript(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(`hi <script>alert("x")</script> there`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "alert(") {
		t.Fatalf("expected script stripped, got %q", out)
	}
}

func TestRender_InlineMath(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("the area is $\\pi r^2$ exactly")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, `<span class="math">`) {
		t.Fatalf("expected math span, got %q", out)
	}
	if !strings.Contains(out, `\pi r^2`) {
		t.Fatalf("expected math content preserved, got %q", out)
	}
}

func TestRender_BlockMath(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("$$x = \\frac{a}{b}$$")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, `<div class="math">`) {
		t.Fatalf("expected math div, got %q", out)
	}
}

func TestRender_MathContentIsEscaped(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("$<img src=x onerror=alert(1)>$")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(out, "<img") {
		t.Fatalf("expected math content escaped, got %q", out)
	}
}

func TestRender_Empty(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
