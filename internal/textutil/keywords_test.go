package textutil

import (
	"reflect"
	"testing"
)

func TestKeywordsDropsStopWordsAndShortTokens(t *testing.T) {
	got := Keywords("A view of the city skyline at night with neon lights", 5)
	want := []string{"city", "skyline", "night", "neon", "lights"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keywords = %v, want %v", got, want)
	}
}

func TestKeywordsLimit(t *testing.T) {
	got := Keywords("mountain forest river valley meadow glacier", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 keywords, got %v", got)
	}
}

func TestKeywordsDeduplicates(t *testing.T) {
	got := Keywords("ocean waves ocean waves ocean", 5)
	want := []string{"ocean", "waves"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keywords = %v, want %v", got, want)
	}
}

func TestKeywordsFoldsDiacritics(t *testing.T) {
	got := Keywords("café façade", 5)
	want := []string{"cafe", "facade"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keywords = %v, want %v", got, want)
	}
}

func TestKeywordsEmptyInput(t *testing.T) {
	if got := Keywords("", 5); len(got) != 0 {
		t.Fatalf("expected no keywords, got %v", got)
	}
	if got := Keywords("of at in", 5); len(got) != 0 {
		t.Fatalf("expected no keywords from punctuation/stop words, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 80); got != "short" {
		t.Fatalf("Truncate short = %q", got)
	}
	got := Truncate("a very long caption that exceeds the budget", 20)
	if len([]rune(got)) > 20 {
		t.Fatalf("Truncate produced %d runes: %q", len([]rune(got)), got)
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("expected ellipsis, got %q", got)
	}
}

func TestWrapLines(t *testing.T) {
	lines := WrapLines("neon city skyline at night", 12, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	for _, line := range lines {
		if len([]rune(line)) > 12 {
			t.Fatalf("line too long: %q", line)
		}
	}
}

func TestWrapLinesSingleWordOverflow(t *testing.T) {
	lines := WrapLines("extraordinarily", 6, 2)
	if len(lines) != 1 || lines[0] != "extrao" {
		t.Fatalf("expected hard cut, got %v", lines)
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Scene #3: Intro!"); got != "scene__3__intro" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("  "); got != "unknown" {
		t.Fatalf("SanitizeToken empty = %q", got)
	}
}
