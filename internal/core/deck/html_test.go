package deck

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenerateHTMLEscapesUserText(t *testing.T) {
	p := &Presentation{
		Title: `Deck <script>`,
		Slides: []Slide{{
			Title:   `<b>bold?</b>`,
			Content: []string{`a & b < c`},
			Layout:  LayoutContent,
		}},
	}
	doc := GenerateHTML(p)

	if strings.Contains(doc, "<b>bold?</b>") {
		t.Error("slide title injected as raw markup")
	}
	if !strings.Contains(doc, "&lt;b&gt;bold?&lt;/b&gt;") {
		t.Error("slide title not escaped")
	}
	if !strings.Contains(doc, "a &amp; b &lt; c") {
		t.Error("content not escaped")
	}
	if !strings.Contains(doc, "<title>Deck &lt;script&gt;</title>") {
		t.Error("document title not escaped")
	}
}

func TestGenerateHTMLTwoColumnSplit(t *testing.T) {
	p := &Presentation{
		Title: "Columns",
		Slides: []Slide{{
			Title:   "Split",
			Content: []string{"alpha", "beta", "gamma"},
			Layout:  LayoutTwoColumn,
		}},
	}
	doc := GenerateHTML(p)

	start := strings.Index(doc, `<div class="columns">`)
	if start < 0 {
		t.Fatal("two-column slide missing columns container")
	}
	end := strings.Index(doc[start:], `</div></div>`)
	if end < 0 {
		t.Fatal("columns container not closed")
	}
	columns := doc[start : start+end]

	divider := strings.Index(columns, `</div><div>`)
	if divider < 0 {
		t.Fatal("columns container has no second column")
	}
	left, right := columns[:divider], columns[divider:]

	if !strings.Contains(left, "alpha") || !strings.Contains(left, "beta") {
		t.Errorf("left column = %q, want alpha and beta", left)
	}
	if strings.Contains(left, "gamma") {
		t.Error("gamma leaked into left column")
	}
	if !strings.Contains(right, "gamma") {
		t.Errorf("right column = %q, want gamma", right)
	}
}

func TestGenerateHTMLNavigation(t *testing.T) {
	p := &Presentation{
		Title: "Nav",
		Slides: []Slide{
			{Title: "One", Content: []string{"a"}, Layout: LayoutContent},
			{Title: "Two", Content: []string{"b"}, Layout: LayoutContent},
		},
	}
	doc := GenerateHTML(p)

	if !strings.Contains(doc, "const totalSlides = 2;") {
		t.Error("navigation script has wrong slide count")
	}
	for _, fragment := range []string{"nextSlide()", "previousSlide()", "toggleFullscreen()", "'ArrowRight'", "'ArrowLeft'"} {
		if !strings.Contains(doc, fragment) {
			t.Errorf("navigation script missing %s", fragment)
		}
	}
	if got := strings.Count(doc, `class="slide"`); got != 2 {
		t.Errorf("document has %d slide blocks, want 2", got)
	}
}

func TestGenerateHTMLFormatStyles(t *testing.T) {
	p := &Presentation{
		Title: "Styles",
		Slides: []Slide{{
			Title:       "Styled",
			TitleFormat: &TextFormat{Bold: true, Color: "#ff0000", Alignment: "center"},
			Content:     []string{"emphasised"},
			ContentFormats: []TextFormat{
				{Italic: true, FontSize: 28, ListType: "none"},
			},
			Layout:          LayoutContent,
			BackgroundColor: "#fafafa",
		}},
	}
	doc := GenerateHTML(p)

	for _, fragment := range []string{
		"font-weight: bold",
		"color: #ff0000",
		"text-align: center",
		"font-style: italic",
		"font-size: 28px",
		"background-color: #fafafa;",
	} {
		if !strings.Contains(doc, fragment) {
			t.Errorf("document missing style fragment %q", fragment)
		}
	}
}

// Both exports must carry identical user-visible text: the same list
// prefixes at the same positions and the same column split.
func TestExportsShareTextContent(t *testing.T) {
	numbered := TextFormat{ListType: "numbered"}
	p := &Presentation{
		Title: "Consistency",
		Slides: []Slide{
			{
				Title:          "Ordered",
				Content:        []string{"plan", "build", "ship", "review", "iterate"},
				Layout:         LayoutTwoColumn,
				ContentFormats: []TextFormat{numbered, numbered, numbered, numbered, numbered},
			},
			{
				Title:        "Plain",
				Content:      []string{"point one", "point two"},
				Layout:       LayoutContent,
				SpeakerNotes: "remember the demo",
			},
		},
	}

	binary, err := fixedClockGenerator().Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	parts := readArchive(t, binary)
	binaryText := parts["ppt/slides/slide1.xml"] + parts["ppt/slides/slide2.xml"]
	doc := GenerateHTML(p)

	expected := []string{
		"Ordered", "Plain",
		"• point one", "• point two",
	}
	for i, item := range []string{"plan", "build", "ship", "review", "iterate"} {
		expected = append(expected, fmt.Sprintf("%d. %s", i+1, item))
	}

	for _, text := range expected {
		if !strings.Contains(binaryText, text) {
			t.Errorf("binary export missing %q", text)
		}
		if !strings.Contains(doc, text) {
			t.Errorf("html export missing %q", text)
		}
	}
}
