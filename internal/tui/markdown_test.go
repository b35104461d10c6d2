package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestMarkdownStyle_RespectsTUITheme(t *testing.T) {
	t.Setenv("TASKDASH_TUI_MD_STYLE", "")
	t.Setenv("COLORFGBG", "")

	t.Setenv("TASKDASH_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}

	t.Setenv("TASKDASH_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_MDStyleOverridesTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("TASKDASH_TUI_THEME", "light")

	t.Setenv("TASKDASH_TUI_MD_STYLE", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_COLORFGBGHeuristic(t *testing.T) {
	t.Setenv("TASKDASH_TUI_MD_STYLE", "")
	t.Setenv("TASKDASH_TUI_THEME", "")

	t.Setenv("COLORFGBG", "0;15")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light for bg 15; got %q", got)
	}
	t.Setenv("COLORFGBG", "15;0")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark for bg 0; got %q", got)
	}
}

func TestMarkdownStyleConfig_KeepsLinkStyles(t *testing.T) {
	got := markdownStyleConfig("light")
	want := styles.LightStyleConfig
	if strPtrValue(got.Link.Color) != strPtrValue(want.Link.Color) {
		t.Fatalf("link color changed: got %q want %q", strPtrValue(got.Link.Color), strPtrValue(want.Link.Color))
	}
	if strPtrValue(got.Text.Color) != colorSurfaceFg.Light {
		t.Fatalf("expected text color to follow the surface palette; got %q", strPtrValue(got.Text.Color))
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Setenv("TASKDASH_TUI_MD_STYLE", "dark")

	if got := renderMarkdown("   ", 40); got != "" {
		t.Fatalf("expected empty output for blank input; got %q", got)
	}
	out := xansi.Strip(renderMarkdown("# Plan\n\nShip **it** soon", 40))
	for _, want := range []string{"Plan", "Ship", "it", "soon"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendered markdown:\n%s", want, out)
		}
	}
}

func strPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
