package store

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pevans/factfed/extract"
)

// Pagination bounds for GET /api/v1/reports.
const (
	defaultLimit = 50
	maxLimit     = 1000
)

// APIServer serves stored reports over HTTP.
type APIServer struct {
	store *ReportStore
}

// NewAPIServer creates a new API server backed by store.
func NewAPIServer(store *ReportStore) *APIServer {
	return &APIServer{
		store: store,
	}
}

// SetupRouter configures the Gin router with all report API routes
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/reports", s.HandleListReports)
	api.GET("/reports/:id", s.HandleGetReport)
	api.GET("/stats", s.HandleStats)
	api.POST("/extract", s.HandleExtract)

	return router
}

// ListReportsResponse represents the response for GET /api/v1/reports.
type ListReportsResponse struct {
	Reports []Record `json:"reports"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// ExtractRequest is the body of POST /api/v1/extract.
type ExtractRequest struct {
	Title   string `json:"title"`
	RawText string `json:"raw_text"`
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// HandleListReports handles GET /api/v1/reports.
func (s *APIServer) HandleListReports(c *gin.Context) {
	limit := defaultLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsedLimit, err := strconv.Atoi(limitParam)
		if err != nil || parsedLimit < 1 {
			errorJSON(c, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = min(parsedLimit, maxLimit)
	}

	offset := 0
	if offsetParam := c.Query("offset"); offsetParam != "" {
		parsedOffset, err := strconv.Atoi(offsetParam)
		if err != nil || parsedOffset < 0 {
			errorJSON(c, http.StatusBadRequest, "invalid_parameter", "Invalid offset parameter")
			return
		}
		offset = parsedOffset
	}

	result, err := s.store.List(ReportFilter{
		CheckResult: c.Query("check_result"),
		Category:    c.Query("category"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to list reports: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, ListReportsResponse{
		Reports: result.Records,
		Total:   result.Total,
		Limit:   limit,
		Offset:  offset,
	})
}

// HandleGetReport handles GET /api/v1/reports/:id.
func (s *APIServer) HandleGetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_id", "Invalid report ID: "+err.Error())
		return
	}

	record, err := s.store.Get(id)
	if errors.Is(err, ErrReportNotFound) {
		errorJSON(c, http.StatusNotFound, "not_found", "Report not found")
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to get report: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}

// HandleStats handles GET /api/v1/stats.
func (s *APIServer) HandleStats(c *gin.Context) {
	stats, err := s.store.Stats()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to compute stats: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleExtract handles POST /api/v1/extract. It runs extraction on the
// posted text without storing anything.
func (s *APIServer) HandleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, extract.Extract(req.RawText, req.Title))
}
