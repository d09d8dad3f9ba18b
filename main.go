package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"auction-dashboard/internal/apiclient"
	"auction-dashboard/internal/cache"
	"auction-dashboard/internal/config"
	"auction-dashboard/internal/dashboard"
	"auction-dashboard/internal/marketplace"
	"auction-dashboard/internal/notify"
	"auction-dashboard/internal/repository"
	"auction-dashboard/internal/server"
	"auction-dashboard/internal/session"
	"auction-dashboard/internal/storage"
	"auction-dashboard/internal/submission"
	dashhandler "auction-dashboard/services/dashboard/handler"
	mphandler "auction-dashboard/services/marketplace/handler"
	"auction-dashboard/utils"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
)

var runMode = flag.String("m", "all", "Run mode: 'dashboard', 'stub' (marketplace API), 'all' (default)")

const (
	winnerCheckInterval  = 30 * time.Second
	limiterCleanupPeriod = 5 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

// notifications is the realtime wiring shared by both servers
type notifications struct {
	source    notify.Source
	publisher notify.Publisher
	run       func(ctx context.Context) error
	close     func()
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Warn("invalid log level, keeping default", map[string]any{"level": cfg.LogLevel})
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			utils.Fatal("failed to connect to Redis", map[string]any{"error": err.Error()})
		}
		defer func() {
			if err := cache.DisconnectRedis(redisClient); err != nil {
				utils.Error("error disconnecting from Redis", map[string]any{"error": err.Error()})
			}
		}()
	}

	notes, err := setupNotifications(cfg, redisClient)
	if err != nil {
		utils.Fatal("failed to set up notifications", map[string]any{"error": err.Error()})
	}
	defer notes.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	var servers []*http.Server
	var cleanups []func()

	startServer := func(name, port string, handler http.Handler) {
		srv := &http.Server{Addr: ":" + port, Handler: handler}
		servers = append(servers, srv)
		wg.Add(1)
		go func() {
			defer wg.Done()
			utils.Info(name+" listening", map[string]any{"port": port})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.Fatal(name+" ListenAndServe error", map[string]any{"error": err.Error()})
			}
			utils.Info(name+" stopped", nil)
		}()
	}

	stubMode := func() {
		repo := repository.NewMemoryRepo()
		prepopulate(repo, time.Now())
		svc := marketplace.NewService(repo, marketplace.WithPublisher(notes.publisher))

		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RunWinnerNotifier(ctx, winnerCheckInterval)
		}()
		startServer("marketplace API", cfg.StubPort, server.SetupMarketplaceRouter(mphandler.NewMarketplaceHandler(svc)))
	}

	dashboardMode := func() {
		api := apiclient.New(cfg.MarketplaceURL, cfg.HTTPTimeout)

		var host submission.ImageHost
		if cfg.ImagesEnabled() {
			s3Host, err := storage.NewS3HostFromConfig(ctx, cfg)
			if err != nil {
				utils.Fatal("failed to initialize S3 image host", map[string]any{"error": err.Error()})
			}
			host = s3Host
		} else {
			utils.Warn("no S3 bucket configured, keeping images in memory", nil)
			host = storage.NewMemoryHost("http://localhost:" + cfg.ApiPort + "/images")
		}

		opts := dashboard.Options{SnapshotTTL: cfg.SnapshotTTL}
		if redisClient != nil {
			opts.KV = redisClient
		}
		manager := session.NewManager(api, api, session.Config{
			Source:    notes.source,
			Dashboard: opts,
			InboxSize: cfg.InboxSize,
		})
		cleanups = append(cleanups, manager.Close)

		submitter := submission.NewService(api, host, cfg.MinAuctionImages, cfg.ImageMaxDimension)
		limiter := server.NewRateLimiter(cfg.RefreshRefillRate, cfg.RefreshBucketSize)

		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(limiterCleanupPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := limiter.Cleanup(); n > 0 {
						utils.Debug("rate limiter buckets dropped", map[string]any{"count": n})
					}
				}
			}
		}()

		h := dashhandler.NewDashboardHandler(manager, submitter, cfg.DefaultPageSize)
		startServer("dashboard API", cfg.ApiPort, server.SetupRouter(h, limiter))
	}

	if notes.run != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := notes.run(ctx); err != nil {
				utils.Error("notification consumer stopped", map[string]any{"error": err.Error()})
			}
		}()
	}

	utils.Info("starting application", map[string]any{"mode": cfg.RunMode, "notify": cfg.NotifyTransport})

	switch cfg.RunMode {
	case "stub":
		stubMode()
	case "dashboard":
		dashboardMode()
	case "all":
		stubMode()
		dashboardMode()
	default:
		utils.Fatal("invalid run mode", map[string]any{"mode": cfg.RunMode})
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	utils.Info("shutting down gracefully", map[string]any{"signal": sig.String()})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.Error("server shutdown error", map[string]any{"addr": srv.Addr, "error": err.Error()})
		}
	}
	cancel()
	for _, fn := range cleanups {
		fn()
	}
	wg.Wait()
	utils.Info("shutdown complete", nil)
}

// setupNotifications picks the realtime transport. Without one, both
// servers share an in-process hub, which only reaches sessions when they run
// in the same process.
func setupNotifications(cfg *config.Config, rdb *redis.Client) (*notifications, error) {
	switch cfg.NotifyTransport {
	case config.NotifyRedis:
		src := notify.NewRedisSource(rdb)
		return &notifications{source: src, publisher: src, close: func() {}}, nil

	case config.NotifyKafka:
		kcfg := notify.NewKafkaConfig()
		consumer, err := sarama.NewConsumer(cfg.KafkaBrokers, kcfg)
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, kcfg)
		if err != nil {
			_ = consumer.Close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		src := notify.NewKafkaSource(consumer, cfg.KafkaTopic)
		return &notifications{
			source:    src,
			publisher: notify.NewKafkaPublisher(producer, cfg.KafkaTopic),
			run:       src.Run,
			close: func() {
				if err := producer.Close(); err != nil {
					utils.Error("error closing kafka producer", map[string]any{"error": err.Error()})
				}
				if err := consumer.Close(); err != nil {
					utils.Error("error closing kafka consumer", map[string]any{"error": err.Error()})
				}
			},
		}, nil

	default:
		hub := notify.NewHub()
		return &notifications{source: hub, publisher: hub, close: func() {}}, nil
	}
}
