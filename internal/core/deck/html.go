package deck

import (
	"fmt"
	"html"
	"strings"
)

// GenerateHTML renders the presentation as a standalone document: one
// full-viewport block per slide with the same text content and two-column
// split as the pptx export, plus client-side navigation.
func GenerateHTML(p *Presentation) string {
	var slides strings.Builder
	for _, slide := range p.Slides {
		slides.WriteString(slideHTML(slide))
	}

	return fmt.Sprintf(htmlShell, html.EscapeString(p.Title), slides.String(), len(p.Slides), len(p.Slides))
}

func slideHTML(slide Slide) string {
	slideStyle := ""
	if slide.BackgroundColor != "" {
		slideStyle = "background-color: " + slide.BackgroundColor + ";"
	}

	var content string
	switch slide.Layout {
	case LayoutTwoColumn:
		left, right := SplitColumns(slide.Content)
		content = fmt.Sprintf(`<div class="columns"><div>%s</div><div>%s</div></div>`,
			blocksHTML(left, slide.ContentFormats, 0),
			blocksHTML(right, slide.ContentFormats, len(left)))
	case LayoutImage:
		content = `<div class="image-placeholder">Image</div>` +
			`<div class="caption">` + blocksHTML(slide.Content, slide.ContentFormats, 0) + `</div>`
	default:
		content = blocksHTML(slide.Content, slide.ContentFormats, 0)
	}

	notes := ""
	if slide.SpeakerNotes != "" {
		notes = `<div class="notes"><strong>Notes:</strong> ` + html.EscapeString(slide.SpeakerNotes) + `</div>`
	}

	return fmt.Sprintf(`<div class="slide" style="%s">
  <h1 style="%s">%s</h1>
  <div class="content">%s</div>
  %s
</div>
`, slideStyle, styleOf(slide.TitleFormat), html.EscapeString(slide.Title), content, notes)
}

// blocksHTML renders content items as sequential paragraphs. startIndex is
// the position of the first item in the slide's full content slice, so list
// numbering and formats line up with the binary export.
func blocksHTML(content []string, formats []TextFormat, startIndex int) string {
	var b strings.Builder
	for i, item := range content {
		position := startIndex + i
		format := formatAt(formats, position)
		fmt.Fprintf(&b, `<p style="%s">%s%s</p>`,
			styleOf(format), itemPrefix(format, position), html.EscapeString(item))
	}
	return b.String()
}

func styleOf(format *TextFormat) string {
	if format == nil {
		return ""
	}
	var styles []string
	if format.FontSize > 0 {
		styles = append(styles, fmt.Sprintf("font-size: %dpx", format.FontSize))
	}
	if format.Bold {
		styles = append(styles, "font-weight: bold")
	}
	if format.Italic {
		styles = append(styles, "font-style: italic")
	}
	if format.Underline {
		styles = append(styles, "text-decoration: underline")
	}
	if format.Color != "" {
		styles = append(styles, "color: "+format.Color)
	}
	if format.Alignment != "" {
		styles = append(styles, "text-align: "+format.Alignment)
	}
	return strings.Join(styles, "; ")
}

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: Arial, sans-serif; background: #f5f5f5; color: #333; overflow-x: hidden; }
.presentation-container { scroll-snap-type: y mandatory; overflow-y: scroll; height: 100vh; }
.slide { scroll-snap-align: start; background: white; width: 100vw; height: 100vh; padding: 3rem; display: flex; flex-direction: column; justify-content: center; position: relative; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
.slide h1 { font-size: 3rem; font-weight: bold; text-align: center; margin-bottom: 2rem; }
.content { flex: 1; display: flex; flex-direction: column; justify-content: center; font-size: 1.5rem; line-height: 1.6; }
.content p { margin: 1rem 0; }
.columns { display: grid; grid-template-columns: 1fr 1fr; gap: 2rem; height: 100%%; }
.image-placeholder { border: 2px dashed #bfbfbf; color: #bfbfbf; display: flex; align-items: center; justify-content: center; height: 50vh; font-size: 1.2rem; }
.caption { text-align: center; font-style: italic; color: #666; margin-top: 1rem; }
.notes { position: fixed; bottom: 1rem; right: 1rem; background: rgba(0,0,0,0.1); padding: 0.5rem; border-radius: 0.5rem; font-size: 0.8rem; max-width: 300px; }
.navigation { position: fixed; bottom: 2rem; left: 50%%; transform: translateX(-50%%); display: flex; gap: 1rem; z-index: 1000; background: rgba(255,255,255,0.9); padding: 1rem; border-radius: 2rem; box-shadow: 0 4px 12px rgba(0,0,0,0.1); }
.nav-button { padding: 0.5rem 1rem; background: #3b82f6; color: white; border: none; border-radius: 0.5rem; cursor: pointer; }
.nav-button:disabled { background: #9ca3af; cursor: not-allowed; }
.slide-counter { display: flex; align-items: center; color: #6b7280; padding: 0 1rem; }
@media print { .navigation { display: none; } .slide { page-break-after: always; box-shadow: none; } }
</style>
</head>
<body>
<div class="presentation-container" id="presentationContainer">
%s</div>
<div class="navigation">
  <button class="nav-button" onclick="previousSlide()" id="prevBtn">Previous</button>
  <div class="slide-counter"><span id="currentSlide">1</span> / <span id="totalSlides">%d</span></div>
  <button class="nav-button" onclick="nextSlide()" id="nextBtn">Next</button>
  <button class="nav-button" onclick="toggleFullscreen()">Fullscreen</button>
</div>
<script>
let currentSlideIndex = 0;
const totalSlides = %d;
const slides = document.querySelectorAll('.slide');
function updateSlideDisplay() {
  document.getElementById('currentSlide').textContent = currentSlideIndex + 1;
  document.getElementById('prevBtn').disabled = currentSlideIndex === 0;
  document.getElementById('nextBtn').disabled = currentSlideIndex === totalSlides - 1;
  slides[currentSlideIndex].scrollIntoView({ behavior: 'smooth' });
}
function nextSlide() { if (currentSlideIndex < totalSlides - 1) { currentSlideIndex++; updateSlideDisplay(); } }
function previousSlide() { if (currentSlideIndex > 0) { currentSlideIndex--; updateSlideDisplay(); } }
function toggleFullscreen() {
  if (document.fullscreenElement) { document.exitFullscreen(); }
  else { document.documentElement.requestFullscreen(); }
}
document.addEventListener('keydown', function(e) {
  switch (e.key) {
    case 'ArrowRight': case ' ': nextSlide(); e.preventDefault(); break;
    case 'ArrowLeft': previousSlide(); e.preventDefault(); break;
    case 'f': toggleFullscreen(); e.preventDefault(); break;
    case 'Escape': if (document.fullscreenElement) { document.exitFullscreen(); } break;
  }
});
updateSlideDisplay();
</script>
</body>
</html>`
