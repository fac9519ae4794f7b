package handler

import "github.com/cardfolio/cardfolio-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx
// responses (see the API error handler).
type errorResponse struct {
	Error string `json:"error"`
}

type listCardsResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Cards   []domain.Card `json:"cards"`
}

type createCardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Card    *domain.Card `json:"card"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
