package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/livedrop/livedrop-api/internal/config"
	"github.com/livedrop/livedrop-api/internal/domain/comment"
	"github.com/livedrop/livedrop-api/internal/domain/download"
	"github.com/livedrop/livedrop-api/internal/domain/event"
	"github.com/livedrop/livedrop-api/internal/domain/feed"
	"github.com/livedrop/livedrop-api/internal/domain/gallery"
	"github.com/livedrop/livedrop-api/internal/domain/like"
	"github.com/livedrop/livedrop-api/internal/domain/photo"
	"github.com/livedrop/livedrop-api/internal/domain/stats"
	"github.com/livedrop/livedrop-api/internal/middleware"
	"github.com/livedrop/livedrop-api/internal/pkg/archive"
	"github.com/livedrop/livedrop-api/internal/pkg/database"
	"github.com/livedrop/livedrop-api/internal/pkg/imaging"
	"github.com/livedrop/livedrop-api/internal/pkg/logger"
	pkgresponse "github.com/livedrop/livedrop-api/internal/pkg/response"
	"github.com/livedrop/livedrop-api/internal/pkg/storage"
	"github.com/livedrop/livedrop-api/internal/pkg/token"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting LiveDrop API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	r2Storage, err := storage.NewR2Storage(storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 storage")
	}

	tokenService := token.NewService(cfg.TokenSecret, cfg.TokenTTL)
	liveFeed := feed.NewRedisFeed(redis)
	processor := imaging.NewProcessor(imaging.DefaultConfig())
	archiveBuilder := archive.NewBuilder(r2Storage, cfg.ArchiveConcurrency, cfg.ArchiveFetchTimeout)

	// ---------- Repositories ----------
	eventRepo := event.NewRepository(db)
	photoRepo := photo.NewRepository(db)
	likeRepo := like.NewRepository(db)
	commentRepo := comment.NewRepository(db)
	statsRepo := stats.NewRepository(db)

	// ---------- Services ----------
	eventService := event.NewService(eventRepo, photoRepo, r2Storage, tokenService)

	eventResolver := &photoEventResolver{events: eventService}
	photoService := photo.NewService(photoRepo, eventResolver, r2Storage, liveFeed)
	likeService := like.NewService(likeRepo, photoRepo, liveFeed)
	commentService := comment.NewService(commentRepo, photoRepo, liveFeed)

	slugResolver := &slugEventResolver{events: eventService}
	statsService := stats.NewService(statsRepo, slugResolver, cfg.PresenceWindow)
	downloadService := download.NewService(&downloadEventResolver{events: eventService}, photoRepo, archiveBuilder)

	// ---------- Handlers ----------
	eventHandler := event.NewHandler(eventService)
	photoHandler := photo.NewHandler(photoService, processor)
	likeHandler := like.NewHandler(likeService)
	commentHandler := comment.NewHandler(commentService)
	statsHandler := stats.NewHandler(statsService)
	downloadHandler := download.NewHandler(downloadService)
	galleryHandler := gallery.NewHandler(
		slugResolver,
		photoRepo,
		&galleryLikeAdapter{likes: likeService},
		statsService,
		photoService,
		liveFeed,
		gallery.Config{
			PollInterval:     cfg.PollInterval,
			PresenceInterval: cfg.PresenceInterval,
		},
		cfg.AllowedOrigins,
	)

	identityMiddleware := middleware.GuestIdentity(tokenService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/events/{slug}/live", func(w http.ResponseWriter, r *http.Request) {
		identityMiddleware(http.HandlerFunc(galleryHandler.Live)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Post("/identity", eventHandler.Identity)

		r.Mount("/events", eventHandler.Routes(identityMiddleware))
		r.Get("/events/{slug}/photos", photoHandler.ListByEvent)
		r.Get("/events/{slug}/stats", statsHandler.ForEvent)

		r.Mount("/uploads", photoHandler.UploadRoutes(identityMiddleware))

		r.Route("/photos", func(r chi.Router) {
			r.Use(identityMiddleware)
			r.Post("/", photoHandler.ConfirmUpload)
			r.Patch("/{id}/visibility", photoHandler.SetVisibility)
			r.Delete("/{id}", photoHandler.Delete)
			r.Post("/{id}/like", likeHandler.Toggle)
			r.Post("/{id}/comments", commentHandler.Add)
			r.Get("/{id}/comments", commentHandler.List)
		})

		r.Post("/download/{slug}", downloadHandler.Download)
	})

	// public image proxy, long-cacheable
	r.Mount("/images", photoHandler.ImageRoutes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// Adapter implementations to bridge interface mismatches

// photoEventResolver adapts event.Service to photo.EventResolver
type photoEventResolver struct {
	events *event.Service
}

func (a *photoEventResolver) ResolveByID(ctx context.Context, id uuid.UUID) (*photo.EventInfo, error) {
	ev, err := a.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &photo.EventInfo{ID: ev.ID, HostID: ev.HostID, Slug: ev.Slug}, nil
}

func (a *photoEventResolver) ResolveBySlug(ctx context.Context, slug string) (*photo.EventInfo, error) {
	ev, err := a.events.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &photo.EventInfo{ID: ev.ID, HostID: ev.HostID, Slug: ev.Slug}, nil
}

// slugEventResolver adapts event.Service to the id-only resolvers used
// by the gallery and stats packages
type slugEventResolver struct {
	events *event.Service
}

func (a *slugEventResolver) ResolveBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	ev, err := a.events.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return ev.ID, nil
}

// downloadEventResolver adapts event.Service to download.EventResolver
type downloadEventResolver struct {
	events *event.Service
}

func (a *downloadEventResolver) ResolveBySlug(ctx context.Context, slug string) (*download.EventInfo, error) {
	ev, err := a.events.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &download.EventInfo{ID: ev.ID, Name: ev.Name}, nil
}

// galleryLikeAdapter adapts like.Service to gallery.LikeToggler
type galleryLikeAdapter struct {
	likes *like.Service
}

func (a *galleryLikeAdapter) Toggle(ctx context.Context, photoID, userID uuid.UUID) (bool, int, error) {
	result, err := a.likes.Toggle(ctx, photoID, userID)
	if err != nil {
		return false, 0, err
	}
	return result.Liked, result.LikeCount, nil
}

func (a *galleryLikeAdapter) ListLikedPhotoIDs(ctx context.Context, eventID, userID uuid.UUID) ([]uuid.UUID, error) {
	return a.likes.ListLikedPhotoIDs(ctx, eventID, userID)
}
