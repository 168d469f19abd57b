package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mapscout/cache"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/models"
	"github.com/use-agent/mapscout/output"
	"github.com/use-agent/mapscout/scraper"
)

// Jobs returns a handler for POST /api/v1/jobs.
//
// Orchestration flow:
//  1. Parse & validate the request.
//  2. Per query: serve from the result cache when fresh enough,
//     otherwise drive the shared browser session through discovery and
//     collection (serialized; the session is single-threaded).
//  3. Return the collected batches plus per-query drop counts.
//
// File sinks still run for uncached queries, so serve mode produces the
// same CSV/XLSX artifacts as a CLI run.
func Jobs(session scraper.Session, sinks []output.Sink, cfg *config.Config, cc *cache.Cache) gin.HandlerFunc {
	// One browser session, one job at a time.
	var mu sync.Mutex

	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.JobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.JobResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		if len(req.Queries) == 0 {
			c.JSON(http.StatusBadRequest, models.JobResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "queries must not be empty",
				},
			})
			return
		}

		mu.Lock()
		defer mu.Unlock()

		runner := scraper.NewRunner(session, sinks, cfg.Scraper, req.Limit)
		results := make([]models.QueryResult, 0, len(req.Queries))

		for _, query := range req.Queries {
			key := cache.Key(query, req.Limit)
			if cached, hit := cc.Get(key, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				results = append(results, cached)
				continue
			}

			reports, err := runner.Run(c.Request.Context(), []string{query})
			if err != nil {
				respondError(c, err, totalStart, results)
				return
			}
			for _, report := range reports {
				if report.Err != nil {
					respondError(c, report.Err, totalStart, results)
					return
				}
				result := models.QueryResult{
					Query:   report.Query,
					Records: report.Records,
					Dropped: report.Dropped,
				}
				cc.Set(key, result)
				if req.MaxAge > 0 {
					result.CacheStatus = "miss"
				}
				results = append(results, result)
			}
		}

		c.JSON(http.StatusOK, models.JobResponse{
			Success: true,
			Results: results,
			TotalMs: time.Since(totalStart).Milliseconds(),
		})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and
// writes a structured JSON error response, keeping any results that
// completed before the failure.
func respondError(c *gin.Context, err error, totalStart time.Time, results []models.QueryResult) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.JobResponse{
		Success: false,
		Results: results,
		Error:   scrapeErr.ToDetail(),
		TotalMs: time.Since(totalStart).Milliseconds(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
