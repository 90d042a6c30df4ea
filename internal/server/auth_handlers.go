package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raihasa-dev/raihasa/internal/api"
	"github.com/raihasa-dev/raihasa/internal/guard"
	"github.com/raihasa-dev/raihasa/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the logged-in user and where to send them next.
// The token itself travels in the cookie, never in the body.
type LoginResponse struct {
	User     *models.User `json:"user"`
	Redirect string       `json:"redirect"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, _ := currentSession(c)
	tokens, _ := currentTokens(c)

	result, err := s.api.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	store.Login(c.Request.Context(), tokens, result.User, result.Token)

	// Return the visitor to where they were headed before the guard
	// bounced them, else to their role home.
	redirect := store.ConsumeReturnPath(c.Request.Context())
	if redirect == "" {
		redirect = guard.HomeFor(result.User.Role)
	}

	s.logger.Info().
		Str("user_id", result.User.ID).
		Str("email", result.User.Email).
		Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{User: result.User, Redirect: redirect})
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.api.Register(c.Request.Context(), api.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")

	c.JSON(http.StatusCreated, gin.H{"user": user, "redirect": guard.LoginPath})
}

func (s *Server) logout(c *gin.Context) {
	store, _ := currentSession(c)
	tokens, _ := currentTokens(c)

	store.Logout(c.Request.Context(), tokens)
	c.Status(http.StatusNoContent)
}

func (s *Server) getCurrentUser(c *gin.Context) {
	store, _ := currentSession(c)
	tokens, _ := currentTokens(c)

	if !store.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := s.api.WithTokens(tokens).Me(c.Request.Context())
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
