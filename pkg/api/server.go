// Package api provides the REST API server for clonehero2beatsaber
package api

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/clonehero2beatsaber/pkg/config"
	"github.com/james-see/clonehero2beatsaber/pkg/converter"
	"github.com/james-see/clonehero2beatsaber/pkg/extractor"
)

// @title CloneHero2BeatSaber API
// @version 1.0
// @description API for converting Clone Hero song archives into Beat Saber maps
// @host localhost:8080
// @BasePath /api/v1

// Server wraps the conversion pipeline behind HTTP
type Server struct {
	cfg *config.Config
}

// StartServer starts the API server on the specified port
func StartServer(port int, cfg *config.Config) error {
	s := &Server{cfg: cfg}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert", s.handleConvert)
		v1.GET("/difficulties", s.listDifficulties)
		v1.GET("/notemap", s.listNoteMap)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
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
		"service": "clonehero2beatsaber",
	})
}

// listDifficulties godoc
// @Summary Show the configured difficulty mapping
// @Description Returns the numeric Clone Hero rating to Beat Saber label mapping
// @Tags info
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/difficulties [get]
func (s *Server) listDifficulties(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mapping": s.cfg.DifficultyMapping,
		"default": converter.FallbackDifficulty,
	})
}

// listNoteMap godoc
// @Summary Show the pitch-to-placement table
// @Description Returns the MIDI pitch to Beat Saber coordinate mapping in use
// @Tags info
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/notemap [get]
func (s *Server) listNoteMap(c *gin.Context) {
	conv, err := s.newConverter("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	nm := conv.NoteMap()
	entries := make([]gin.H, 0)
	for _, pitch := range nm.Pitches() {
		coord, _ := nm.Lookup(pitch)
		entries = append(entries, gin.H{
			"pitch":     pitch,
			"lineIndex": coord.LineIndex,
			"lineLayer": coord.LineLayer,
			"saber":     coord.Saber,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// handleConvert godoc
// @Summary Convert a Clone Hero archive
// @Description Upload a Clone Hero song zip and receive a zipped Beat Saber map
// @Tags convert
// @Accept multipart/form-data
// @Produce application/zip
// @Param file formData file true "Clone Hero song archive (.zip)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/convert [post]
func (s *Server) handleConvert(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	work, err := os.MkdirTemp("", "ch2bs-api-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return
	}
	defer os.RemoveAll(work)

	archivePath := filepath.Join(work, "upload.zip")
	out, err := os.Create(archivePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	out.Close()

	conv, err := s.newConverter(work)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ex := extractor.New(work, nil)
	meta, cleanup, err := ex.Load(c.Request.Context(), archivePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()

	res, err := conv.ConvertSong(c.Request.Context(), meta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload, err := zipDir(res.OutputDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	outputName := trimExt(header.Filename) + "-beatsaber.zip"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Header("X-Note-Count", fmt.Sprintf("%d", res.NoteCount))
	c.Data(http.StatusOK, "application/zip", payload)
}

func (s *Server) newConverter(outputDir string) (*converter.Converter, error) {
	return converter.New(converter.Options{
		OutputDir:       outputDir,
		DifficultyTable: s.cfg.DifficultyTable(),
		AudioFormat:     s.cfg.AudioTargetFormat,
	})
}

func zipDir(dir string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		f, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(f, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("packaging map: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("packaging map: %w", err)
	}
	return buf.Bytes(), nil
}

func trimExt(name string) string {
	if len(name) > 4 {
		return name[:len(name)-4]
	}
	return "converted"
}
