package render

import (
	"strings"
	"testing"
	"time"

	"feedview/internal/feed"
)

var cardNow = time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

func TestCardHeightMatchesRender(t *testing.T) {
	blocks := []feed.Block{
		{BlockID: "t", Kind: feed.KindText, Author: "ana", Body: strings.Repeat("word ", 60)},
		{BlockID: "p", Kind: feed.KindPoll, Author: "bo", Title: "Lunch?", Options: []string{"noodles", "a very long option that needs to wrap across lines"}},
		{BlockID: "l", Kind: feed.KindLink, Author: "cy", Title: "Docs", URL: "https://example.test/docs"},
		{BlockID: "i", Kind: feed.KindImage, Author: "di", URL: "https://example.test/cat.png"},
	}
	for _, b := range blocks {
		for _, width := range []int{12, 30, 80} {
			card := Card{Block: b, Now: cardNow}
			buf := &Buffer{}
			card.Render(Rect{Width: width}, buf)
			if got, want := len(buf.Lines), card.DesiredHeight(width); got != want {
				t.Fatalf("%s@%d: rendered %d lines, DesiredHeight %d", b.BlockID, width, got, want)
			}
			for _, line := range buf.Lines {
				if line.Width() > width {
					t.Fatalf("%s@%d: line %q wider than viewport", b.BlockID, width, LinesToPlainStrings([]Line{line})[0])
				}
			}
		}
	}
}

func TestCardExpandGrowsBody(t *testing.T) {
	b := feed.Block{BlockID: "t", Kind: feed.KindText, Author: "ana", Body: strings.Repeat("word ", 60)}
	collapsed := Card{Block: b, Now: cardNow}.DesiredHeight(30)
	expanded := Card{Block: b, Now: cardNow, Expanded: true}.DesiredHeight(30)
	if expanded <= collapsed {
		t.Fatalf("expanded height %d should exceed collapsed %d", expanded, collapsed)
	}
	// header + 3 body lines + separator
	if collapsed != 5 {
		t.Fatalf("collapsed height = %d, want 5", collapsed)
	}
}

func TestCardFocusMarker(t *testing.T) {
	b := feed.Block{BlockID: "t", Kind: feed.KindText, Author: "ana", Body: "hi"}
	plain := LinesToPlainStrings(Card{Block: b, Focused: true, Now: cardNow}.Lines(20))
	if !strings.HasPrefix(plain[0], "▌ ana") {
		t.Fatalf("first line = %q, want focus marker", plain[0])
	}
	if plain[len(plain)-1] != "" {
		t.Fatalf("last line = %q, want separator", plain[len(plain)-1])
	}
}

func TestRelativeAge(t *testing.T) {
	cases := map[time.Duration]string{
		10 * time.Second: "just now",
		5 * time.Minute:  "5m",
		3 * time.Hour:    "3h",
		50 * time.Hour:   "2d",
	}
	for d, want := range cases {
		if got := relativeAge(d); got != want {
			t.Fatalf("relativeAge(%v) = %q, want %q", d, got, want)
		}
	}
}
