// Package server - Haupt-Router und Server-Setup fuer Durchblick
// Beinhaltet: Server-Struct, Router-Registrierung, Middleware, Server-Start
package server

import (
	"net"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/durchblick-ai/durchblick/envconfig"
	"github.com/durchblick-ai/durchblick/license"
	"github.com/durchblick-ai/durchblick/llm"
	"github.com/durchblick-ai/durchblick/version"
)

var mode string = gin.ReleaseMode

// Server verwaltet den HTTP-Server und die Vision-Pipeline
type Server struct {
	addr   net.Addr
	gate   *license.Manager
	engine llm.VisionEngine
	cfg    PipelineConfig

	// available ist das Modell-Verfuegbarkeits-Orakel; injizierbar fuer Tests
	available availableFunc
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.ReleaseMode
	}

	gin.SetMode(mode)
}

// NewServer verdrahtet Gate, Engine und Pipeline-Konfiguration
func NewServer(gate *license.Manager, engine llm.VisionEngine, cfg PipelineConfig) *Server {
	return &Server{
		gate:      gate,
		engine:    engine,
		cfg:       cfg,
		available: llm.ModelAvailable,
	}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() (http.Handler, error) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(
		cors.New(corsConfig),
		trustedHostsMiddleware(s.addr),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "Durchblick is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Durchblick is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Vision
	r.POST("/api/vision", s.VisionHandler)
	r.GET("/api/vision/usage", s.VisionUsageHandler)

	return r, nil
}
