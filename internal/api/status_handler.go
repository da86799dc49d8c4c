package api

import (
	"net/http"
	"time"

	"github.com/enrollment-verifier/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// recentLimit caps the submissions echoed by /stats
const recentLimit = 20

// StatusHandler serves read-only submission statistics
type StatusHandler struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(repos *repository.Repositories, log zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		repos: repos,
		log:   log.With().Str("component", "api").Logger(),
	}
}

// Stats returns submission counts and the most recent records
func (h *StatusHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	total, verified, err := h.repos.Student.Counts(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Could not count submissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	recent, err := h.repos.Student.ListNewestFirst(ctx, recentLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("Could not list submissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	type submission struct {
		UserID      int64  `json:"user_id"`
		Username    string `json:"username"`
		SubmittedAt string `json:"submitted_at"`
		Verified    bool   `json:"verified"`
	}
	submissions := make([]submission, 0, len(recent))
	for _, s := range recent {
		submissions = append(submissions, submission{
			UserID:      s.UserID,
			Username:    s.Username,
			SubmittedAt: s.SubmittedAt.Format(time.RFC3339),
			Verified:    s.Verified,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": gin.H{
			"total":    total,
			"verified": verified,
			"pending":  total - verified,
		},
		"recent":    submissions,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
