package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidateInput checks request shape only: it builds no model and calls
// no solver, it just reports whether the roster, availability grid and
// policy bounds are well formed.
func (h *Handler) ValidateInput(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	p, err := req.Problem()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"employee_count": p.NumEmployees(),
			"shift_count":    p.NumShifts(),
			"manager_count":  len(p.ManagerIndexes()),
			"trainee_count":  len(p.TraineePairs()),
		},
	})
}
