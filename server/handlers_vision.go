// MODUL: handlers_vision
// ZWECK: HTTP Handler fuer die Vision-Analyse Endpoints
// INPUT: HTTP POST /api/vision, GET /api/vision/usage
// OUTPUT: JSON VisionResponse bzw. Fehler mit stabilem Code
// NEBENEFFEKTE: Loggt pro Request mit UUID
// ABHAENGIGKEITEN: pipeline.go (intern), license, llm, api, gin, uuid
// HINWEISE: Alle Pipeline-Fehler werden hier auf genau einen HTTP-Status
//           und einen Maschinen-Code abgebildet; nichts paniced auf
//           fehlerhaftem Netzwerk-Input

package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/durchblick-ai/durchblick/api"
	"github.com/durchblick-ai/durchblick/license"
	"github.com/durchblick-ai/durchblick/llm"
)

// VisionHandler verarbeitet POST /api/vision
func (s *Server) VisionHandler(c *gin.Context) {
	var req api.VisionRequest
	if err := c.ShouldBindJSON(&req); errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Mode == "" {
		req.Mode = "full"
	}

	requestID := uuid.NewString()
	slog.Info("vision request", "id", requestID, "mode", req.Mode, "has_url", req.URL != "", "model", req.Model)

	resp, err := s.ProcessVisionRequest(c.Request.Context(), &req)
	if err != nil {
		s.abortVisionError(c, requestID, err)
		return
	}

	slog.Info("vision request done", "id", requestID, "duration_ms", resp.Meta.DurationMS, "warnings", len(resp.Meta.ParseWarnings))
	c.JSON(http.StatusOK, resp)
}

// abortVisionError mappt Pipeline-Fehler auf HTTP-Status und Code
func (s *Server) abortVisionError(c *gin.Context, requestID string, err error) {
	slog.Warn("vision request failed", "id", requestID, "error", err)

	switch {
	case license.IsLicenseError(err):
		status, code := license.StatusFor(err)
		c.AbortWithStatusJSON(status, gin.H{
			"error":   "License validation failed",
			"code":    code,
			"message": err.Error(),
		})
	case errors.Is(err, ErrBadInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrModelNotAvailable):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, llm.ErrTimeout):
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// VisionUsageHandler verarbeitet GET /api/vision/usage
func (s *Server) VisionUsageHandler(c *gin.Context) {
	usage := s.gate.Usage()
	c.JSON(http.StatusOK, api.VisionUsageResponse{
		RequestsToday:     usage.RequestsToday,
		RequestsThisMonth: usage.RequestsThisMonth,
		LastReset:         usage.LastReset.UTC().Format(time.RFC3339),
	})
}
