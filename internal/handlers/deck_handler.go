package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/auth"
	"github.com/loomchat/loomchat-be/internal/core/deck"
)

// DeckHandler exports stored slide-deck artifacts. Export is a pure
// non-streaming operation on the presentation JSON the client supplies.
type DeckHandler struct {
	pptx *deck.PPTXGenerator
}

func NewDeckHandler(pptx *deck.PPTXGenerator) *DeckHandler {
	return &DeckHandler{pptx: pptx}
}

type exportRequest struct {
	Content string `json:"content"`
}

// Export packages the presentation as a pptx download, or as a standalone
// HTML document with ?format=html.
func (h *DeckHandler) Export(c *fiber.Ctx) error {
	if auth.IdentityFrom(c) == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}

	var req exportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Validation("invalid request body"))
	}
	presentation, err := deck.Parse(req.Content)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid presentation data format"))
	}

	if c.Query("format") == "html" {
		doc := deck.GenerateHTML(presentation)
		c.Set("Content-Type", "text/html; charset=utf-8")
		c.Set("Content-Disposition", `attachment; filename="`+deck.ExportFilename(presentation.Title, ".html")+`"`)
		return c.SendString(doc)
	}

	pptx, err := h.pptx.Generate(presentation)
	if err != nil {
		return apperr.Respond(c, apperr.Validation(err.Error()))
	}
	c.Set("Content-Type", deck.ContentType)
	c.Set("Content-Disposition", `attachment; filename="`+deck.ExportFilename(presentation.Title, ".pptx")+`"`)
	return c.Send(pptx)
}
