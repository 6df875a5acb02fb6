package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestColumns_PadsAllButLastCell(t *testing.T) {
	got := columns([]int{5, 3}, "ab", "c", "tail")
	if got != "ab     c    tail" {
		t.Fatalf("unexpected layout %q", got)
	}
}

func TestFitWidth_TruncatesWithEllipsis(t *testing.T) {
	setGlyphs(glyphSetASCII)
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })

	got := fitWidth("Margaret Hamilton", 10)
	if xansi.StringWidth(got) != 10 {
		t.Fatalf("expected width 10; got %d (%q)", xansi.StringWidth(got), got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ascii ellipsis; got %q", got)
	}
	if got := fitWidth("Ada", 6); got != "Ada   " {
		t.Fatalf("expected padding; got %q", got)
	}
}

func TestOverlay_KeepsCellsOutsideBlock(t *testing.T) {
	base := []string{"..........", "..........", ".........."}
	overlay(base, []string{"XX", "YY"}, 3, 1)
	want := []string{"..........", "...XX.....", "...YY....."}
	for i := range want {
		if base[i] != want[i] {
			t.Fatalf("row %d: got %q want %q", i, base[i], want[i])
		}
	}
}

func TestNormalizePane_ExactSize(t *testing.T) {
	lines := normalizePane("a\nbb\nccc\ndddd", 3, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines; got %d", len(lines))
	}
	for _, ln := range lines {
		if xansi.StringWidth(ln) != 3 {
			t.Fatalf("expected width 3; got %q", ln)
		}
	}
}

func TestGlyphs_FromEnv(t *testing.T) {
	t.Setenv("CLUBHUB_TUI_GLYPHS", "")
	setGlyphs(glyphSetUnicode)
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs by default; got %v", got)
	}

	t.Setenv("CLUBHUB_TUI_GLYPHS", "ascii")
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected ascii glyphs; got %v", got)
	}
	if glyphBranch() != ">" || glyphPin() != "*" {
		t.Fatalf("expected ascii affordances")
	}

	// Unknown values keep the current set.
	t.Setenv("CLUBHUB_TUI_GLYPHS", "bogus")
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected unknown to be ignored; got %v", got)
	}
	setGlyphs(glyphSetUnicode)
}

func TestColorFGBGDark(t *testing.T) {
	tests := []struct {
		in       string
		dark, ok bool
	}{
		{"15;0", true, true},
		{"0;15", false, true},
		{"12;default;8", false, true},
		{"7;4", true, true},
		{"", false, false},
		{"15;x", false, false},
	}
	for _, tt := range tests {
		dark, ok := colorFGBGDark(tt.in)
		if dark != tt.dark || ok != tt.ok {
			t.Fatalf("colorFGBGDark(%q) = %v, %v; want %v, %v", tt.in, dark, ok, tt.dark, tt.ok)
		}
	}
}

func TestMarkdownStyle_RespectsTUITheme(t *testing.T) {
	t.Setenv("CLUBHUB_TUI_MD_STYLE", "")
	t.Setenv("COLORFGBG", "")

	t.Setenv("CLUBHUB_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}
	t.Setenv("CLUBHUB_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}

	t.Setenv("CLUBHUB_TUI_MD_STYLE", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected md style to override theme; got %q", got)
	}
}

func TestRenderMarkdown_KeepsText(t *testing.T) {
	t.Setenv("CLUBHUB_TUI_MD_STYLE", "dark")
	out := xansi.Strip(renderMarkdown("Port the **lidar** driver.\n\n- read frames", 40))
	for _, want := range []string{"lidar", "read frames"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if renderMarkdown("   ", 40) != "" {
		t.Fatalf("expected blank description to render empty")
	}
}

func TestNavItems_DigitsCoverTopLevel(t *testing.T) {
	items := navItems()
	if len(items) > 9 {
		t.Fatalf("digit shortcuts cover at most 9 items; got %d", len(items))
	}
	for _, it := range items {
		if it.IsBranch() && itemPage(it) == pageMembers && it.Label != "Members" {
			t.Fatalf("branch %q maps to the wrong page", it.Label)
		}
	}
	if p := itemPage(items[1]); p != pageTeams {
		t.Fatalf("expected Teams item to map to teams page; got %v", p)
	}
}
