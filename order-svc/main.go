package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"overcooked-orders/config"
	httpapi "overcooked-orders/order-svc/internal/api/http"
	"overcooked-orders/order-svc/internal/service"
	"overcooked-orders/order-svc/internal/storage"
)

type app struct {
	handler  http.Handler
	tracking *service.TrackingService
	closers  []func()
}

func (a *app) Close() {
	a.tracking.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type statusTransport struct {
	source    service.StatusSource
	publisher service.StatusPublisher
	events    service.OrderEventPublisher
}

func parseFlags(cfg *config.Config, args []string) error {
	flagSet := pflag.NewFlagSet("order-svc", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flagSet.StringVar(&cfg.StatusSource, "status-source", cfg.StatusSource, "status transport: timer, kafka or nats")
	flagSet.DurationVar(&cfg.TimerInterval, "timer-interval", cfg.TimerInterval, "stage interval of the simulated status feed (0 disables it)")
	flagSet.StringVar(&cfg.PublicBaseURL, "public-url", cfg.PublicBaseURL, "base URL encoded into tracking QR codes")
	return flagSet.Parse(args)
}

func buildTransport(ctx context.Context, cfg config.Config, repo storage.OrderLookup, logger *zap.Logger) (statusTransport, []func(), error) {
	var closers []func()
	var t statusTransport

	switch cfg.StatusSource {
	case config.SourceTimer:
		feed := storage.NewLocalStatusFeed(repo, cfg.TimerInterval, logger)
		t = statusTransport{source: feed, publisher: feed, events: feed}

	case config.SourceKafka:
		if cfg.KafkaBroker == "" {
			return t, nil, fmt.Errorf("status source %q needs KAFKA_BROKER", cfg.StatusSource)
		}
		reader := config.NewKafkaReader(cfg, cfg.StatusTopic, cfg.ConsumerGroup)
		source := storage.NewKafkaStatusSource(reader, logger)
		go source.Start(ctx)
		closers = append(closers, func() { reader.Close() })
		t.source = source

	case config.SourceNATS:
		if cfg.NATSURL == "" {
			return t, nil, fmt.Errorf("status source %q needs NATS_URL", cfg.StatusSource)
		}
		conn := config.MustInitNATS(cfg, logger)
		closers = append(closers, conn.Close)
		pub := storage.NewNATSPublisher(conn)
		t = statusTransport{source: storage.NewNATSStatusSource(conn, logger), publisher: pub, events: pub}

	default:
		return t, nil, fmt.Errorf("unknown status source %q", cfg.StatusSource)
	}

	if cfg.KafkaBroker != "" {
		orders := config.NewKafkaWriter(cfg, cfg.OrderEventsTopic)
		status := config.NewKafkaWriter(cfg, cfg.StatusTopic)
		closers = append(closers, func() { orders.Close() }, func() { status.Close() })
		pub := storage.NewKafkaPublisher(orders, status)
		t.events = pub
		if cfg.StatusSource == config.SourceKafka {
			t.publisher = pub
		}
	}
	return t, closers, nil
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	var repo interface {
		service.OrderRepository
		storage.OrderLookup
	}
	if cfg.PostgresEnabled() {
		db := config.MustInitPostgres(cfg, logger)
		a.closers = append(a.closers, func() { db.Close() })
		pg := storage.NewPostgresRepository(db)
		if err := pg.EnsureSchema(); err != nil {
			return nil, err
		}
		if err := pg.SeedMenu(ctx); err != nil {
			return nil, err
		}
		repo = pg
	} else {
		logger.Info("DB_HOST not set, serving sample data")
		repo = storage.NewSampleRepository()
	}

	var store service.Storage
	if cfg.RedisEnabled() {
		client := config.MustInitRedis(cfg, logger)
		a.closers = append(a.closers, func() { client.Close() })
		store = storage.NewRedisStorage(client, cfg.CartTTL)
	} else {
		logger.Info("REDIS_HOST not set, keeping carts in memory")
		store = storage.NewMemoryStorage()
	}

	transport, closers, err := buildTransport(ctx, cfg, repo, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closers...)

	catalog := service.NewCatalogService(repo, store, logger)
	carts := service.NewCarts(store, logger)
	a.tracking = service.NewTrackingService(repo, transport.source, transport.publisher, logger)

	go carts.Run(ctx, cfg.CartIdle)

	checkoutOpts := []service.CheckoutOption{
		service.WithOrderStarter(a.tracking),
		service.WithLocation(cfg.Location),
	}
	if transport.events != nil {
		checkoutOpts = append(checkoutOpts, service.WithEventPublisher(transport.events))
	}
	checkout := service.NewCheckoutService(repo, store, service.NewRandomOccupancy(cfg.TableOccupancy), logger, checkoutOpts...)
	orders := service.NewOrderService(repo, catalog, store, service.DefaultQRGenerator{BaseURL: cfg.PublicBaseURL}, logger)

	handler := httpapi.NewHandler(catalog, carts, checkout, orders, a.tracking, logger)
	a.handler = httpapi.NewRouter(handler)
	return a, nil
}

func main() {
	cfg := config.Load()
	if err := parseFlags(&cfg, os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start order service", zap.Error(err))
	}
	defer a.Close()

	if err := httpapi.StartServer(ctx, cfg.HTTPAddr, a.handler, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
