package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"overcooked-orders/api-gateway/internal/gateway"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type options struct {
	addr   string
	config gateway.Config
}

func parseOptions(args []string) (options, error) {
	opts := options{
		addr: getEnv("GATEWAY_ADDR", ":8080"),
		config: gateway.Config{
			OrderSvcURL: getEnv("ORDER_SVC_URL", "http://localhost:8081"),
			FrontendDir: getEnv("FRONTEND_DIR", "./frontend"),
		},
	}
	flagSet := pflag.NewFlagSet("api-gateway", pflag.ContinueOnError)
	flagSet.StringVar(&opts.addr, "addr", opts.addr, "HTTP listen address")
	flagSet.StringVar(&opts.config.OrderSvcURL, "order-svc", opts.config.OrderSvcURL, "base URL of order-svc")
	flagSet.StringVar(&opts.config.FrontendDir, "frontend", opts.config.FrontendDir, "directory with the static front end")
	return opts, flagSet.Parse(args)
}

func newHandler(cfg gateway.Config, logger *zap.Logger) http.Handler {
	// No client timeout: status event streams stay open.
	gw := gateway.NewGateway(cfg, &http.Client{}, logger)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8080", "http://127.0.0.1:8080", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(gw.SetupRoutes())
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
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
	logger = logger.With(zap.String("service", "api-gateway"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newHandler(opts.config, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("API Gateway starting", zap.String("addr", opts.addr), zap.String("order_svc", opts.config.OrderSvcURL))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}
