package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/auth"
	"github.com/loomchat/loomchat-be/internal/core/export"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
)

// DocumentHandler serves versioned artifact documents.
type DocumentHandler struct {
	docs repositories.DocumentRepo
}

func NewDocumentHandler(docs repositories.DocumentRepo) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

func (h *DocumentHandler) ownedVersions(c *fiber.Ctx) (uuid.UUID, []models.Document, error) {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return uuid.Nil, nil, apperr.Authentication("authentication required")
	}
	docID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return uuid.Nil, nil, apperr.Validation("invalid document id")
	}
	versions, err := h.docs.GetVersions(c.Context(), docID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if len(versions) == 0 {
		return uuid.Nil, nil, apperr.NotFound("document not found")
	}
	if versions[0].UserID != identity.UserID {
		return uuid.Nil, nil, apperr.Authorization("you are not the owner of this document")
	}
	return docID, versions, nil
}

// Versions lists every version of an owned document, oldest first.
func (h *DocumentHandler) Versions(c *fiber.Ctx) error {
	_, versions, err := h.ownedVersions(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(versions)
}

type saveDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Kind    string `json:"kind"`
}

// Save appends a new version of an owned document. The first version of a
// fresh id may also be created here, with an explicit kind.
func (h *DocumentHandler) Save(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}
	docID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid document id"))
	}
	var req saveDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Validation("invalid request body"))
	}

	current, err := h.docs.GetLatest(c.Context(), docID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	doc := &models.Document{ID: docID, UserID: identity.UserID}
	if current != nil {
		if current.UserID != identity.UserID {
			return apperr.Respond(c, apperr.Authorization("you are not the owner of this document"))
		}
		doc.Title = current.Title
		doc.Kind = current.Kind
	} else {
		if !models.ValidKind(req.Kind) {
			return apperr.Respond(c, apperr.Validation("invalid document kind"))
		}
		doc.Title = req.Title
		doc.Kind = req.Kind
	}
	if req.Title != "" {
		doc.Title = req.Title
	}
	doc.Content = req.Content

	if err := h.docs.SaveVersion(c.Context(), doc); err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// DeleteAfter rewinds an owned document: versions created strictly after the
// timestamp are removed.
func (h *DocumentHandler) DeleteAfter(c *fiber.Ctx) error {
	docID, _, err := h.ownedVersions(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	timestamp, err := time.Parse(time.RFC3339, c.Query("timestamp"))
	if err != nil {
		return apperr.Respond(c, apperr.Validation("timestamp must be RFC3339"))
	}
	deleted, err := h.docs.DeleteAfterTimestamp(c.Context(), docID, timestamp)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// Export downloads the latest version of a sheet document as a workbook.
func (h *DocumentHandler) Export(c *fiber.Ctx) error {
	_, versions, err := h.ownedVersions(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	latest := versions[len(versions)-1]
	if latest.Kind != models.KindSheet {
		return apperr.Respond(c, apperr.Validation("only sheet documents can be exported as xlsx"))
	}

	workbook, err := export.CSVToXLSX(latest.Content, "")
	if err != nil {
		return apperr.Respond(c, err)
	}

	c.Set("Content-Type", export.XLSXContentType)
	c.Set("Content-Disposition", `attachment; filename="`+latest.Title+`.xlsx"`)
	return c.Send(workbook)
}
