package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/raihasa-dev/raihasa/internal/api"
)

// maxPollAttempts bounds status polling for a pending transaction; after
// this many attempts the page stops asking.
const maxPollAttempts = 5

// PaymentStatusResponse is the payment page's polling payload
type PaymentStatusResponse struct {
	*api.PaymentStatus
	ShouldRetry bool `json:"should_retry"`
}

func (s *Server) getPaymentStatus(c *gin.Context) {
	tokens, _ := currentTokens(c)

	attempt, err := strconv.Atoi(c.DefaultQuery("attempt", "0"))
	if err != nil || attempt < 0 {
		attempt = 0
	}

	status, err := s.api.WithTokens(tokens).PaymentStatus(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentStatusResponse{
		PaymentStatus: status,
		ShouldRetry:   status.Status == api.PaymentPending && attempt < maxPollAttempts,
	})
}
