package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/config"
	"jobmate/review-service/internal/db"
	"jobmate/review-service/internal/events"
	"jobmate/review-service/internal/grpcserver"
	"jobmate/review-service/internal/handler"
	"jobmate/review-service/internal/internship"
	"jobmate/review-service/internal/logging"
	"jobmate/review-service/internal/review"
	"jobmate/review-service/internal/scheduler"
	"jobmate/review-service/internal/seed"
	"jobmate/review-service/internal/stream"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP, gRPC and WebSocket servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Catalog ─────────────────────────────────────────────────────────────
	data, err := initialData(cfg)
	if err != nil {
		return err
	}
	reviewStore, offerStore, err := newStores(cfg, data)
	if err != nil {
		return err
	}

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	var (
		reviewRepo review.Repository     = db.Nop{}
		offerRepo  internship.Repository = db.Nop{}
	)
	if cfg.DatabaseURL != "" {
		log.Info("connecting to PostgreSQL")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		repo := db.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		reviewRepo, offerRepo = repo, repo
		log.Info("PostgreSQL connected")
	} else {
		log.Warn("DATABASE_URL not set, catalog is kept in memory only")
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	var pub events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		log.Info("connecting to Redis")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		pub = events.NewRedisPublisher(rdb)
		log.Info("Redis connected")
	}

	// ── Services ─────────────────────────────────────────────────────────────
	reviews := review.NewService(reviewStore, reviewRepo, pub, log.Named("reviews"))
	nReviews, err := reviews.Load(ctx)
	if err != nil {
		return err
	}
	internships := internship.NewService(offerStore, offerRepo, log.Named("internships"))
	nOffers, err := internships.Load(ctx)
	if err != nil {
		return err
	}
	log.Info("catalog ready",
		zap.Int("reviews", reviewStore.Len()),
		zap.Int("internships", offerStore.Len()),
		zap.Int("reviewsFromDB", nReviews),
		zap.Int("internshipsFromDB", nOffers))

	reviewHub := stream.NewHub(reviewStore, log.Named("stream"))
	offerHub := stream.NewHub(offerStore, log.Named("stream"))

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	h := handler.New(reviews, internships, catalog.NewHistory(),
		handler.Streams{Reviews: reviewHub, Internships: offerHub}, version, log.Named("http"))
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	gs := grpcserver.New(grpcserver.NewServer(reviews, internships), log.Named("grpc"))
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP listening", zap.String("version", version), zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("gRPC listening", zap.String("port", cfg.GRPCPort))
		if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// ── Background jobs ──────────────────────────────────────────────────────
	if cfg.ImportIntervalHours > 0 && cfg.AdzunaAppID != "" {
		fetcher := internship.NewAdzunaFetcher(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, log.Named("adzuna"))
		importer := internship.NewImporter(internships, fetcher, pub, internship.ImportConfig{
			Titles:    cfg.ImportTitles,
			Locations: cfg.ImportLocations,
			RedFlags:  cfg.ImportRedFlags,
		}, log.Named("import"))
		sched := scheduler.New(importer, cfg.ImportIntervalHours, log.Named("cron"))
		g.Go(func() error { return sched.Run(gctx) })
	} else {
		log.Info("internship import disabled")
	}
	if cfg.WatchSeed && cfg.SeedFile != "" {
		w := seed.NewWatcher(cfg.SeedFile, func(d seed.Data) error {
			return seed.Apply(d, reviewStore, offerStore)
		}, log.Named("seed"))
		g.Go(func() error { return w.Run(gctx) })
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		reviewHub.Close()
		offerHub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP shutdown", zap.Error(err))
		}
		gs.GracefulStop()
		return nil
	})

	err = g.Wait()
	log.Info("stopped")
	return err
}
