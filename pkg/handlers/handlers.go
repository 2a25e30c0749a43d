package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwave-examples/employee-scheduling/internal/jobs"
	"github.com/dwave-examples/employee-scheduling/pkg/auth"
	"github.com/dwave-examples/employee-scheduling/pkg/database"
	"github.com/dwave-examples/employee-scheduling/pkg/models"
	"github.com/dwave-examples/employee-scheduling/pkg/solver"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB     *gorm.DB
	Runner *jobs.Runner
	Log    *zap.SugaredLogger
}

// ScheduleRequest is the JSON input for a solve. Availability rows align
// with the employees slice; shift labels are derived from start_date.
type ScheduleRequest struct {
	Employees    []models.Employee       `json:"employees" binding:"required"`
	NumShifts    int                     `json:"num_shifts" binding:"required"`
	Availability [][]models.Availability `json:"availability" binding:"required"`
	Params       models.PolicyParams     `json:"params"`
	Staffing     models.StaffingTarget   `json:"staffing"`
	Encoding     string                  `json:"encoding"`
	StartDate    string                  `json:"start_date"`
}

// Problem expands the request into a solve snapshot.
func (r *ScheduleRequest) Problem() (*models.Problem, error) {
	start := models.DefaultStartDate(time.Now())
	if r.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return nil, err
		}
		start = parsed
	}
	p := &models.Problem{
		Employees:    r.Employees,
		Shifts:       models.MakeShifts(r.NumShifts, start),
		Availability: r.Availability,
		Params:       r.Params,
		Staffing:     r.Staffing,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key for scheduler routes
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      userID,
			RateLimit: 10000,
		})

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// Schedule runs one solve cycle and returns the materialized grid plus,
// on infeasibility, the categorized violation report. Solver failures
// are a distinct error response and never produce a schedule.
func (h *Handler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	encoding, err := jobs.ParseEncoding(req.Encoding)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := req.Problem()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.Runner.Solve(c.Request.Context(), p, encoding)
	if err != nil {
		// A solver-side failure can wrap a deadline error from its own
		// HTTP client, so the transport check must come before the
		// cancellation check.
		var transport *solver.TransportError
		if errors.As(err, &transport) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "solver failure", "detail": err.Error()})
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusConflict, gin.H{"error": "solve superseded or canceled"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "solver failure", "detail": err.Error()})
		return
	}

	h.RecordUsage(c, p.NumShifts(), p.NumEmployees())
	h.recordSolve(c, p, outcome)

	c.JSON(http.StatusOK, outcome)
}

// CancelSolve aborts the in-flight solve, if any.
func (h *Handler) CancelSolve(c *gin.Context) {
	h.Runner.Cancel()
	c.JSON(http.StatusOK, gin.H{"message": "cancel requested"})
}

// ListSolves returns recent solve history.
func (h *Handler) ListSolves(c *gin.Context) {
	var records []database.SolveRecord
	if err := h.DB.Order("created_at desc").Limit(30).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch solve history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"solves": records})
}

func (h *Handler) recordSolve(c *gin.Context, p *models.Problem, outcome *jobs.Outcome) {
	record := database.SolveRecord{
		JobID:        outcome.JobID,
		Encoding:     string(outcome.Encoding),
		NumEmployees: p.NumEmployees(),
		NumShifts:    p.NumShifts(),
		Feasible:     outcome.Feasible,
		Violations:   outcome.Violations.Count(),
		DurationMS:   outcome.Elapsed.Milliseconds(),
	}
	if raw, exists := c.Get("apiKey"); exists {
		record.KeyID = raw.(*database.APIKey).ID
	}
	if err := h.DB.Create(&record).Error; err != nil {
		h.Log.Warnw("could not persist solve record", "job_id", outcome.JobID, "error", err)
	}
}

// RecordUsage records API usage in the database using a single-query
// upsert (supported by both Postgres and SQLite).
func (h *Handler) RecordUsage(c *gin.Context, shiftCount, employeeCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":   gorm.Expr("request_count + ?", 1),
			"total_shifts":    gorm.Expr("total_shifts + ?", shiftCount),
			"total_employees": gorm.Expr("total_employees + ?", employeeCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:          apiKey.ID,
		Date:           today,
		RequestCount:   1,
		TotalShifts:    shiftCount,
		TotalEmployees: employeeCount,
	})
}
