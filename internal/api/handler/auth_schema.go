package handler

import "github.com/cardfolio/cardfolio-api/internal/core/domain"

type registerRequest struct {
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email"    validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profileImage"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}
