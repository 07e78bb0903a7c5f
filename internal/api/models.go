package api

import "github.com/cardboardgarden/garden-api/internal/domain"

// RegisterRequest is the payload of POST /auth/register. Only presence is
// checked here; the account engine applies the field rules after its
// duplicate checks.
type RegisterRequest struct {
	Username  string `json:"username"  validate:"required"`
	Email     string `json:"email"     validate:"required"`
	Password  string `json:"password"  validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest is the payload of POST /auth/login. Login is a username or
// an email address.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest is the payload of the forgot-password and
// resend-verification endpoints.
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the payload of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse is the success envelope without extra fields.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterResponse is returned with 201 after registration.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginResponse carries the session token and the account profile.
type LoginResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    domain.Profile `json:"user"`
}

// ProfileResponse is returned by GET /auth/me.
type ProfileResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    domain.Profile `json:"user"`
}

// CardPageResponse is one page of catalog search results.
type CardPageResponse struct {
	Content       []domain.Card `json:"content"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
}

func cardPageToResponse(p domain.CardPage) CardPageResponse {
	content := p.Cards
	if content == nil {
		content = []domain.Card{}
	}
	return CardPageResponse{
		Content:       content,
		Page:          p.Page.Page,
		Size:          p.Page.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages(),
	}
}
