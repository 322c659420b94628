// Package server exposes the processing pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fiscalxml/processor/internal/processor"
	"github.com/fiscalxml/processor/internal/storage"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API surface over one pipeline.
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	store    storage.Store
	log      zerolog.Logger
}

// NewServer creates the API server. The store may be nil, in which case
// processing runs without persistence and deduplication.
func NewServer(config *Config, store storage.Store, log zerolog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	opts := []processor.Option{processor.WithLogger(log)}
	if store != nil {
		opts = append(opts, processor.WithStore(store))
	}

	s := &Server{
		config:   config,
		router:   router,
		pipeline: processor.NewPipeline(opts...),
		store:    store,
		log:      log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/process/xml", s.handleProcessXML)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/detect", s.handleDetect)
		v1.GET("/stats", s.handleStats)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("address", s.config.Address).Msg("http server listening")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleProcessXML(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	name := c.Query("filename")
	if name == "" {
		name = "upload.xml"
	}

	result := s.pipeline.ProcessBytes(ctx, name, body)
	if result.Status == processor.StatusRejected {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: result.Err.Error()})
		return
	}

	c.JSON(http.StatusOK, ProcessResponse{
		Status:     string(result.Status),
		DocumentID: result.DocumentID,
		Type:       result.DocumentType.String(),
		Document:   result.Document,
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	// Validation never persists; run the stages without a store.
	dry := processor.NewPipeline(processor.WithLogger(s.log))
	result := dry.ProcessBytes(ctx, "validate.xml", body)
	if result.Status == processor.StatusRejected {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Valid:  false,
			Errors: []string{result.Err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, ValidationResponse{
		Valid:  len(result.Document.Issues) == 0,
		Type:   result.DocumentType.String(),
		Issues: result.Document.Issues,
	})
}

func (s *Server) handleDetect(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	det := s.pipeline.Detect(body)
	c.JSON(http.StatusOK, DetectResponse{
		Type:    det.Type.String(),
		Pattern: det.Pattern,
		Size:    len(body),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "no storage configured"})
		return
	}

	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}
