package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/pmarinho/classxp/config"
	"github.com/pmarinho/classxp/internal/api"
	"github.com/pmarinho/classxp/internal/blobstore"
	"github.com/pmarinho/classxp/internal/db"
	appmw "github.com/pmarinho/classxp/internal/middleware"
	"github.com/pmarinho/classxp/internal/services"
	"github.com/pmarinho/classxp/internal/store"
	"github.com/pmarinho/classxp/internal/suggest"
)

func main() {
	cfg := config.Load()
	commit := os.Getenv("CLASSXP_COMMIT")
	buildTime := os.Getenv("CLASSXP_BUILD_TIME")

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())
	e.Use(appmw.NoStore)
	e.Use(appmw.RoleHint)

	// built-in blob endpoint for self-hosted persistence
	var backend blobstore.Backend = blobstore.NewMemoryBackend()
	if cfg.SQLitePath != "" {
		sqlDB, err := db.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite %s: %v", cfg.SQLitePath, err)
		}
		blobs, err := db.NewBlobStore(sqlDB)
		if err != nil {
			log.Fatalf("init blob table: %v", err)
		}
		backend = blobs
	}
	blobstore.NewHandler(backend, cfg.BlobKey).Register(e)

	var persist blobstore.Persister
	if cfg.BlobURL != "" {
		persist = blobstore.NewClient(cfg.BlobURL, cfg.BlobKey)
	} else {
		persist = blobstore.NewLocal(backend)
	}

	st := store.New()
	st.Restore(blobstore.LoadOrEmpty(context.Background(), persist))

	points := services.DefaultPoints()
	statsSvc := services.NewStatsService(st)
	var suggestClient services.SuggestClient
	if cfg.SuggestURL != "" {
		suggestClient = suggest.NewClient(cfg.SuggestURL, cfg.SuggestKey)
	}
	handler := api.NewHandler(
		st,
		services.NewClassService(st),
		services.NewRecordService(st, points),
		statsSvc,
		services.NewReportService(st, statsSvc),
		services.NewBackupService(st),
		services.NewSuggestService(suggestClient),
		persist,
		services.StatsOptions{IncludeCancelled: cfg.IncludeCancelled},
	)
	handler.Register(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":         true,
			"name":       "ClassXP API",
			"env":        cfg.AppEnv,
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	e.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	addr := ":" + cfg.AppPort
	log.Printf("classxp server listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
