package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raihasa-dev/raihasa/internal/token"
	"github.com/raihasa-dev/raihasa/internal/wizard"
)

// CitiesQuery selects the province whose cities to list
type CitiesQuery struct {
	Province string `form:"province" binding:"required,regioncode"`
}

// wizardStore returns the draft store for the authenticated visitor. The
// identity comes from the token payload, falling back to the session user.
func (s *Server) wizardStore(c *gin.Context) *wizard.Store {
	tokens, _ := currentTokens(c)

	userID := token.UserID(tokens)
	if userID == "" {
		store, _ := currentSession(c)
		if user := store.User(); user != nil {
			userID = user.ID
		}
	}
	return wizard.NewStore(s.draftKV, userID, s.logger)
}

func (s *Server) getDraft(c *gin.Context) {
	draft, err := s.wizardStore(c).Load(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load wizard draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) postStep(c *gin.Context) {
	var fields wizard.Draft
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := s.wizardStore(c).NextStep(c.Request.Context(), c.Param("step"), fields)
	if err != nil {
		if errors.Is(err, wizard.ErrMissingField) || errors.Is(err, wizard.ErrUnknownStep) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to merge wizard step")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save step"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) listProvinces(c *gin.Context) {
	tokens, _ := currentTokens(c)

	provinces, err := s.api.WithTokens(tokens).Provinces(c.Request.Context())
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	// Feeding the list back re-resolves any stored location values that
	// were waiting for it.
	s.wizardStore(c).SetProvinces(c.Request.Context(), provinces)

	c.JSON(http.StatusOK, provinces)
}

func (s *Server) listCities(c *gin.Context) {
	var query CitiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, _ := currentTokens(c)

	cities, err := s.api.WithTokens(tokens).Cities(c.Request.Context(), query.Province)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	s.wizardStore(c).SetCities(c.Request.Context(), cities)

	c.JSON(http.StatusOK, cities)
}

func (s *Server) submitRecommendation(c *gin.Context) {
	store := s.wizardStore(c)

	draft, err := store.Load(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load wizard draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}

	tokens, _ := currentTokens(c)

	receipt, err := s.api.WithTokens(tokens).SubmitRecommendation(c.Request.Context(), draft)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	// The backend echoed an authoritative record id: merge it into the
	// persisted draft rather than overwriting previous fields.
	if draft, err = store.Merge(c.Request.Context(), wizard.Draft{"id": receipt.ID}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist recommendation id")
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt, "draft": draft})
}
