package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/artisanswear/artisans/internal/app"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		cancel()
		zlog.Fatal().Err(err).Msg("failed to connect to document store")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		cancel()
		zlog.Fatal().Err(err).Msg("document store unreachable")
	}
	cancel()

	application, err := app.NewApp(client)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}

	// Initial load. A cold store is not fatal; the list resynchronizes on
	// the first request.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	if err := application.Catalog.Refresh(loadCtx); err != nil {
		zlog.Warn().Err(err).Msg("initial catalog load failed")
	}
	cancelLoad()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           application.HTTPHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info().Str("addr", server.Addr).Msg("artisans catalog listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = server.Shutdown(ctx)
	_ = client.Disconnect(ctx)
}
