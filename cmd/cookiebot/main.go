package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yexhin/cookie-customer-service/internal/agent"
	"github.com/yexhin/cookie-customer-service/internal/audit"
	"github.com/yexhin/cookie-customer-service/internal/bot"
	"github.com/yexhin/cookie-customer-service/internal/config"
	"github.com/yexhin/cookie-customer-service/internal/kafka"
	"github.com/yexhin/cookie-customer-service/internal/ledger"
	"github.com/yexhin/cookie-customer-service/internal/logger"
	"github.com/yexhin/cookie-customer-service/internal/session"
)

const greeting = "Warm welcome to our beloved customers, what cookies you would like to bring home today?\nº∙👩🏻₊˚🍪 ˚ෆ"

const farewell = "Thank you for choosing us today! We are looking forward to our next cookies 🤎."

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize session store", zap.Error(err))
	}
	defer closeStore()

	producer := newProducer(cfg, log)
	pipeline := audit.NewPipeline(producer, cfg.KafkaTopic, 2, 5, 500*time.Millisecond, log)
	pipeline.Start(ctx)

	led := ledger.New(log, pipeline)
	router := agent.NewRouter(agent.KeywordClassifier{}, led, log)
	b := bot.New(store, router, log, cfg.SessionKey)

	metricsSrv := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      metricsRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("metrics endpoint listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	runLoop(ctx, b, log)
	cancel()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	pipeline.Shutdown(drainCtx)

	if err := g.Wait(); err != nil {
		log.Error("metrics server error", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// runLoop is the conversation loop. Turn errors are logged and
// swallowed: the customer gets a generic apology and the session state
// stays whatever the last successful turn left it.
func runLoop(ctx context.Context, b *bot.Bot, log *zap.Logger) {
	fmt.Println(greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println(farewell)
			return
		case "clear", "delete session":
			if err := b.Reset(ctx); err != nil {
				log.Error("failed to reset session", zap.Error(err))
				fmt.Println("Sorry, something went wrong on our side. Could you try again?")
				continue
			}
			fmt.Println("Session deleted.")
			continue
		}

		reply, err := b.Turn(ctx, input)
		if err != nil {
			log.Error("turn failed", zap.Error(err))
			fmt.Println("Sorry, something went wrong on our side. Could you try again?")
			continue
		}
		fmt.Println("Bot:", reply)
	}
}

func newStore(ctx context.Context, cfg config.Config, log *zap.Logger) (session.Store, func(), error) {
	if cfg.Database.Configured() {
		pg, err := session.NewPostgresStore(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		log.Info("using postgres session store", zap.String("host", cfg.Database.Host))
		return pg, pg.Close, nil
	}

	fs, err := session.NewFileStore(cfg.StateFile)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using file session store", zap.String("path", cfg.StateFile))
	return fs, func() {}, nil
}

func newProducer(cfg config.Config, log *zap.Logger) kafka.Producer {
	if len(cfg.KafkaBrokers) > 0 {
		log.Info("audit log goes to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
		return kafka.NewWriter(cfg.KafkaBrokers, log)
	}
	return kafka.NewConsole(log)
}

func metricsRouter() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
