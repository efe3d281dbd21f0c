// Package deck converts the structured presentation model produced by the
// slides artifact handler into a packaged pptx binary and a navigable HTML
// document. Both exports are deterministic for identical input and clock, and
// share the same text content and column split.
package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TextFormat carries optional per-run styling for the HTML export.
type TextFormat struct {
	FontSize  int    `json:"fontSize,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Color     string `json:"color,omitempty"`
	Alignment string `json:"alignment,omitempty"` // left | center | right
	ListType  string `json:"listType,omitempty"`  // bullet | numbered | none
}

const (
	LayoutTitle     = "title"
	LayoutContent   = "content"
	LayoutTwoColumn = "two-column"
	LayoutImage     = "image"
)

type Slide struct {
	ID              string       `json:"id,omitempty"`
	Title           string       `json:"title"`
	Content         []string     `json:"content"`
	Layout          string       `json:"layout"`
	BackgroundColor string       `json:"backgroundColor,omitempty"`
	SpeakerNotes    string       `json:"speakerNotes,omitempty"`
	TitleFormat     *TextFormat  `json:"titleFormat,omitempty"`
	ContentFormats  []TextFormat `json:"contentFormats,omitempty"`
}

type Presentation struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// Parse decodes the stored artifact content into the presentation model.
func Parse(content string) (*Presentation, error) {
	var p Presentation
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, fmt.Errorf("invalid presentation data format: %w", err)
	}
	return &p, nil
}

// SplitColumns divides content for the two-column layout: the first
// ceil(n/2) items go left, the remainder right.
func SplitColumns(content []string) (left, right []string) {
	midpoint := (len(content) + 1) / 2
	return content[:midpoint], content[midpoint:]
}

// ExportFilename is the download name for the deck: title lower-cased with
// non-alphanumeric runes replaced by underscores, plus the extension.
func ExportFilename(title, ext string) string {
	if title == "" {
		title = "presentation"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + ext
}

// escapeXML escapes the five XML-reserved characters exactly once.
func escapeXML(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// itemPrefix renders the list marker for one content block. numbered markers
// count from the item's position in the full content slice so the right
// column of a two-column slide continues the numbering.
func itemPrefix(format *TextFormat, position int) string {
	listType := "bullet"
	if format != nil && format.ListType != "" {
		listType = format.ListType
	}
	switch listType {
	case "numbered":
		return fmt.Sprintf("%d. ", position+1)
	case "none":
		return ""
	default:
		return "• "
	}
}

func formatAt(formats []TextFormat, index int) *TextFormat {
	if index < len(formats) {
		return &formats[index]
	}
	return nil
}
