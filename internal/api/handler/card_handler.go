package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cardfolio/cardfolio-api/internal/metrics"
	"github.com/cardfolio/cardfolio-api/internal/core/domain"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

// CardHandler handles card CRUD. Uploads are written to the image store
// before the document mutation runs, so the database never references a file
// that does not exist; when the mutation fails afterwards, the fresh file is
// removed again.
type CardHandler struct {
	cardService ports.CardService
	images      ports.ImageStore
}

func NewCardHandler(cardService ports.CardService, images ports.ImageStore) *CardHandler {
	return &CardHandler{cardService: cardService, images: images}
}

// List handles GET /api/cards.
//
// @Summary      List the authenticated user's cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listCardsResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/cards [get]
func (h *CardHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	cards, err := h.cardService.GetUserCards(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listCardsResponse{
		Success: true,
		Count:   len(cards),
		Cards:   cards,
	})
}

// Create handles POST /api/cards (multipart: title, value, funFact, image).
//
// @Summary      Add a card with an image upload
// @Tags         cards
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title    formData  string  true   "Card title"
// @Param        value    formData  string  true   "Card value, e.g. $1,200"
// @Param        funFact  formData  string  false  "Fun fact"
// @Param        image    formData  file    true   "Card image (max 5 MB)"
// @Success      201  {object}  createCardResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/cards [post]
func (h *CardHandler) Create(c echo.Context) error {
	userID, username, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return fmt.Errorf("%w: please upload an image for the card", domain.ErrValidation)
	}

	title := c.FormValue("title")
	value := c.FormValue("value")
	if strings.TrimSpace(title) == "" || strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: please provide title and value for the card", domain.ErrValidation)
	}

	filename, err := h.storeUpload(userID, fh)
	if err != nil {
		return err
	}

	card, err := h.cardService.AddCard(c.Request().Context(), ports.AddCardInput{
		UserID:        userID,
		Username:      username,
		Title:         title,
		Value:         value,
		FunFact:       c.FormValue("funFact"),
		ImageFilename: filename,
	})
	if err != nil {
		return err
	}

	metrics.CardMutationsTotal.WithLabelValues("add").Inc()
	return c.JSON(http.StatusCreated, createCardResponse{
		Success: true,
		Message: "Card added successfully",
		Card:    card,
	})
}

// Update handles PUT /api/cards/:cardId (multipart, all fields optional).
//
// @Summary      Update a card
// @Tags         cards
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        cardId   path      string  true   "Card ID"
// @Param        title    formData  string  false  "Card title"
// @Param        value    formData  string  false  "Card value"
// @Param        funFact  formData  string  false  "Fun fact"
// @Param        image    formData  file    false  "Replacement image"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/cards/{cardId} [put]
func (h *CardHandler) Update(c echo.Context) error {
	userID, username, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	cardID := c.Param("cardId")

	patch, err := cardPatchFromForm(c)
	if err != nil {
		return err
	}

	newFilename := ""
	if fh, fileErr := c.FormFile("image"); fileErr == nil {
		newFilename, err = h.storeUpload(userID, fh)
		if err != nil {
			return err
		}
	}

	err = h.cardService.UpdateCard(c.Request().Context(), ports.UpdateCardInput{
		UserID:           userID,
		Username:         username,
		CardID:           cardID,
		Patch:            patch,
		NewImageFilename: newFilename,
	})
	if err != nil {
		// The replacement file was already written; do not leak it when
		// the card turned out not to exist.
		if newFilename != "" {
			_ = h.images.Delete(newFilename)
		}
		return err
	}

	metrics.CardMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, messageResponse{
		Success: true,
		Message: "Card updated successfully",
	})
}

// Delete handles DELETE /api/cards/:cardId.
//
// @Summary      Delete a card
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId  path  string  true  "Card ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/cards/{cardId} [delete]
func (h *CardHandler) Delete(c echo.Context) error {
	userID, username, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.cardService.DeleteCard(c.Request().Context(), userID, username, c.Param("cardId")); err != nil {
		return err
	}

	metrics.CardMutationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{
		Success: true,
		Message: "Card deleted successfully",
	})
}

// storeUpload generates a filename and writes the upload to the image store.
func (h *CardHandler) storeUpload(userID string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	filename := h.images.GenerateFilename(userID, fh.Filename)
	if err := h.images.Save(filename, src, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		return "", err
	}
	return filename, nil
}

// cardPatchFromForm builds a partial update from the multipart form. A field
// that is present overwrites, even as an empty string; an absent field keeps
// the stored value.
func cardPatchFromForm(c echo.Context) (domain.CardPatch, error) {
	var patch domain.CardPatch

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return patch, echo.NewHTTPError(http.StatusBadRequest, "expected multipart form data")
		}
		return patch, err
	}

	if v, ok := form.Value["title"]; ok && len(v) > 0 {
		patch.Title = &v[0]
	}
	if v, ok := form.Value["value"]; ok && len(v) > 0 {
		patch.Value = &v[0]
	}
	if v, ok := form.Value["funFact"]; ok && len(v) > 0 {
		patch.FunFact = &v[0]
	}
	return patch, nil
}
