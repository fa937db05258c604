// Package api provides the REST API server for stegomidi
package api

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/james-see/stegomidi/pkg/converter/schemes"
	"github.com/james-see/stegomidi/pkg/stego"
	"github.com/james-see/stegomidi/pkg/workspace"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title StegoMIDI API
// @version 1.0
// @description API for hiding text in MIDI files and recovering it
// @host localhost:8080
// @BasePath /api/v1

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

// Server holds what the handlers share
type Server struct {
	ws     *workspace.Workspace
	config stego.Config
	scheme string
	log    *log.Logger
}

// NewServer creates a server that saves into ws and encodes with cfg
func NewServer(ws *workspace.Workspace, cfg stego.Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{ws: ws, config: cfg, log: logger}
}

// UseScheme sets the scheme for requests that do not name one
func (s *Server) UseScheme(id string) error {
	if _, err := schemes.Lookup(id, s.config); err != nil {
		return err
	}
	s.scheme = id
	return nil
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(requestID())
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/encode", s.handleEncode)
		v1.POST("/decode", s.handleDecode)
		v1.POST("/corrupt", s.handleCorrupt)
		v1.GET("/artifacts", s.listArtifacts)
		v1.GET("/schemes", listSchemes)
		v1.GET("/alphabet", showAlphabet)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port. scheme is the
// default for requests that do not name one; cfg applies to every request.
func StartServer(port int, workdir, scheme string, cfg stego.Config) error {
	ws := workspace.New(workdir)
	if err := ws.Ensure(); err != nil {
		return err
	}

	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := NewServer(ws, cfg)
	if err := s.UseScheme(scheme); err != nil {
		return err
	}
	s.log.Info("serving", "port", port, "workdir", ws.Root)
	return s.Router().Run(fmt.Sprintf(":%d", port))
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", RequestIDHeader, "X-Sync-Markers", "X-Artifact-Path", "X-Corrupted-Index", "X-Corrupted-Keys"},
	})

	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stegomidi",
	})
}
