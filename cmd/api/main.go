package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/setlist/internal/adapters/rest"
	"github.com/ewilliams-labs/setlist/internal/adapters/spotify"
	"github.com/ewilliams-labs/setlist/internal/adapters/sqlite"
	"github.com/ewilliams-labs/setlist/internal/config"
	"github.com/ewilliams-labs/setlist/internal/core/ports"
	"github.com/ewilliams-labs/setlist/internal/core/services"
	"github.com/ewilliams-labs/setlist/internal/worker"
)

func main() {
	// 1. Configuration: crash early on anything missing or invalid.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Driven adapters
	dbAdapter, err := sqlite.NewAdapter(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	defer dbAdapter.Close()

	creds := spotify.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
		TokenURL:     cfg.Spotify.TokenURL,
	}
	// The token source outlives any single request, so it gets the root context.
	httpClient, err := spotify.NewHTTPClient(context.Background(), creds)
	if err != nil {
		log.Fatalf("FATAL: Failed to build Spotify session: %v", err)
	}
	spotifyClient := spotify.NewClient(httpClient, cfg.Spotify.APIURL)
	spotifyClient.SetMarket(cfg.Spotify.Market)

	var publisher ports.PlaylistPublisher
	if creds.CanPublish() {
		publisher = spotifyClient
	} else {
		log.Println("WARN main: SPOTIFY_REFRESH_TOKEN not set, playlists are stored locally only")
	}

	pool := worker.NewPool(dbAdapter, cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start()
	defer pool.Stop()

	// 3. Core logic
	svc := services.NewOrchestrator(spotifyClient, publisher, dbAdapter, pool, services.Settings{
		TrackCount:      cfg.Curation.TrackCount,
		Creativity:      cfg.Curation.Creativity,
		DefaultArc:      cfg.Curation.Arc,
		MaxPerArtist:    cfg.Curation.MaxPerArtist,
		SearchLimit:     cfg.Curation.SearchLimit,
		PublicPlaylists: cfg.Curation.PublicPlaylists,
	})

	// 4. Driving adapter
	handler := rest.NewHandler(svc)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	log.Printf("setlist API listening on %s", cfg.HTTPAddr)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
