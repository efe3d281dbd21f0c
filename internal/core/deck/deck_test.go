package deck

import (
	"testing"
)

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse("not json"); err == nil {
		t.Fatal("expected error for invalid presentation data")
	}
}

func TestSplitColumnsOddCount(t *testing.T) {
	left, right := SplitColumns([]string{"a", "b", "c"})
	if len(left) != 2 || left[0] != "a" || left[1] != "b" {
		t.Fatalf("left = %v, want [a b]", left)
	}
	if len(right) != 1 || right[0] != "c" {
		t.Fatalf("right = %v, want [c]", right)
	}
}

func TestSplitColumnsEdges(t *testing.T) {
	left, right := SplitColumns([]string{"only"})
	if len(left) != 1 || len(right) != 0 {
		t.Fatalf("single item split = %v / %v", left, right)
	}

	left, right = SplitColumns(nil)
	if len(left) != 0 || len(right) != 0 {
		t.Fatalf("empty split = %v / %v", left, right)
	}
}

func TestExportFilename(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Q3 Sales Review", "q3_sales_review.pptx"},
		{"Hello, World!", "hello__world_.pptx"},
		{"", "presentation.pptx"},
	}
	for _, tc := range cases {
		if got := ExportFilename(tc.title, ".pptx"); got != tc.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestEscapeXMLEscapesExactlyOnce(t *testing.T) {
	got := escapeXML(`<Title & "Quote">`)
	want := `&lt;Title &amp; &quot;Quote&quot;&gt;`
	if got != want {
		t.Fatalf("escapeXML = %q, want %q", got, want)
	}

	// Input is treated as raw text: an ampersand is escaped even when it
	// already looks like an entity.
	if got := escapeXML("&amp;"); got != "&amp;amp;" {
		t.Fatalf("escapeXML(%q) = %q", "&amp;", got)
	}
}

func TestItemPrefixNumberingUsesGlobalPosition(t *testing.T) {
	numbered := &TextFormat{ListType: "numbered"}
	if got := itemPrefix(numbered, 0); got != "1. " {
		t.Fatalf("position 0 prefix = %q", got)
	}
	if got := itemPrefix(numbered, 3); got != "4. " {
		t.Fatalf("position 3 prefix = %q", got)
	}
	if got := itemPrefix(nil, 5); got != "• " {
		t.Fatalf("default prefix = %q", got)
	}
	if got := itemPrefix(&TextFormat{ListType: "none"}, 0); got != "" {
		t.Fatalf("none prefix = %q", got)
	}
}
