package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

// ProfileHandler serves public profiles.
type ProfileHandler struct {
	profileService ports.ProfileService
}

func NewProfileHandler(profileService ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type profileResponse struct {
	Success bool                 `json:"success"`
	User    *ports.PublicProfile `json:"user"`
}

// Get handles GET /api/users/:username, the public profile with collection
// stats. No authentication required.
//
// @Summary      Get a user's public profile
// @Tags         users
// @Produce      json
// @Param        username  path  string  true  "Username (case-insensitive)"
// @Success      200  {object}  profileResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{username} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	username := c.Param("username")
	if strings.TrimSpace(username) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	profile, err := h.profileService.GetPublicProfile(c.Request().Context(), username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Success: true,
		User:    profile,
	})
}
