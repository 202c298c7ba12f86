package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarauxil/internal/config"
	"scholarauxil/internal/database"
	"scholarauxil/internal/domain/library"
	"scholarauxil/internal/extract"
	"scholarauxil/internal/middleware"
	"scholarauxil/internal/pkg/identity"
	"scholarauxil/internal/storagepath"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	if err := ensureDirs(cfg); err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	paths, err := storagepath.New(cfg.StorageRoot)
	if err != nil {
		log.Fatal(err)
	}

	store := library.NewStore(db)
	libraryService := library.NewService(store, paths, cfg.MaxUploadBytes)
	libraryHandler := library.NewHandler(libraryService)

	dispatcher := extract.NewDispatcher(extract.NewTesseractEngine(cfg.OCRLanguages...))
	extractHandler := extract.NewHandler(dispatcher, cfg.MaxUploadBytes)

	gate := identity.NewVerifier(cfg.JWTSecret)

	r := gin.Default()
	r.Use(middleware.ErrorLogger())
	r.MaxMultipartMemory = 8 << 20

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		// public: one-shot extraction and stored-file serving
		extractHandler.RegisterRoutes(api)
		libraryHandler.RegisterFileRoutes(api)

		protected := api.Group("/")
		protected.Use(middleware.RequireUser(gate))
		{
			libraryHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

func ensureDirs(cfg config.Config) error {
	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		return err
	}

	dsn := cfg.DatabaseDSN
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
