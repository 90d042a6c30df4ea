package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateThreadRequest represents a new Dreamshub thread
type CreateThreadRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

func (s *Server) getDashboard(c *gin.Context) {
	tokens, _ := currentTokens(c)

	user, err := s.api.WithTokens(tokens).Me(c.Request.Context())
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) getAdminHome(c *gin.Context) {
	store, _ := currentSession(c)
	c.JSON(http.StatusOK, gin.H{"user": store.User(), "sessions": s.sessions.Len()})
}

func (s *Server) listThreads(c *gin.Context) {
	tokens, _ := currentTokens(c)

	threads, err := s.api.WithTokens(tokens).ListThreads(c.Request.Context())
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (s *Server) createThread(c *gin.Context) {
	var req CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, _ := currentTokens(c)

	thread, err := s.api.WithTokens(tokens).CreateThread(c.Request.Context(), req.Title, req.Body)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

func (s *Server) listCourses(c *gin.Context) {
	tokens, _ := currentTokens(c)

	courses, err := s.api.WithTokens(tokens).Courses(c.Request.Context())
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (s *Server) getCourse(c *gin.Context) {
	tokens, _ := currentTokens(c)

	course, err := s.api.WithTokens(tokens).Course(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
