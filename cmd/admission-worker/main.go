// cmd/admission-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"admission-portal/internal/common/aws"
	"admission-portal/internal/common/camunda"
	"admission-portal/internal/common/config"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/observability"
	"admission-portal/internal/store"
	"admission-portal/internal/wizard"

	is "admission-portal/internal/workers/admission/index-submission"
	na "admission-portal/internal/workers/admission/notify-applicant"
	rrd "admission-portal/internal/workers/admission/record-review-decision"
	vs "admission-portal/internal/workers/admission/validate-submission"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting admission worker...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New("admission-worker")
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	if cfg.Storage.Submissions != config.BackendPostgres {
		zapLog.Warn("submissions are kept in memory; workers will not see applications submitted by other processes")
	}

	// --- Init stores with retry ---
	var backends *store.Backends
	err = retryWithBackoff(func() error {
		var err error
		backends, err = store.Open(ctx, cfg, log)
		return err
	}, 15, 2*time.Second, zapLog, "Store initialization")
	if err != nil {
		zapLog.Fatal("stores failed after retries", zap.Error(err))
	}
	defer backends.Close()
	zapLog.Info("Stores opened",
		zap.String("drafts", cfg.Storage.Drafts),
		zap.String("submissions", cfg.Storage.Submissions),
		zap.Bool("search", backends.Index != nil),
	)

	// --- Init Zeebe client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Notification channels ---
	var (
		emailSender na.EmailSender
		smsSender   na.SMSSender
	)
	awsCfg := cfg.Integrations.AWS
	if awsCfg.SES.Enabled || awsCfg.SNS.Enabled {
		sdkCfg, err := aws.LoadConfig(ctx, awsCfg.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if awsCfg.SES.Enabled {
			emailSender = aws.NewSESClient(sdkCfg, awsCfg.SES.FromEmail)
		}
		if awsCfg.SNS.Enabled {
			smsSender = aws.NewSNSClient(sdkCfg)
		}
	}

	// --- Register workers ---
	policy := wizard.PolicyFromConfig(cfg.Wizard)
	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log); w != nil {
			workers = append(workers, w)
		}
	}
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	start(vs.TaskType, vs.NewHandler(
		&vs.Config{Timeout: timeout(vs.TaskType), Policy: policy},
		backends.Submissions, obs, log,
	))

	if backends.Index != nil {
		start(is.TaskType, is.NewHandler(
			&is.Config{Timeout: timeout(is.TaskType)},
			backends.Submissions, backends.Index, obs, log,
		))
	} else {
		zapLog.Warn("elasticsearch not configured; index-submission worker not started")
	}

	start(na.TaskType, na.NewHandler(
		&na.Config{
			EmailEnabled: awsCfg.SES.Enabled,
			SMSEnabled:   awsCfg.SNS.Enabled,
			Timeout:      timeout(na.TaskType),
		},
		emailSender, smsSender, obs, log,
	))

	start(rrd.TaskType, rrd.NewHandler(
		&rrd.Config{Timeout: timeout(rrd.TaskType)},
		backends.Submissions, obs, log,
	))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health, readiness and metrics ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if backends.Postgres != nil {
			checks["postgres"] = "ok"
			if err := backends.Postgres.Ping(checkCtx); err != nil {
				checks["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if backends.Redis != nil {
			checks["redis"] = "ok"
			if err := backends.Redis.Ping(checkCtx); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(checks)
	})

	server := &http.Server{
		Addr:              cfg.Server.HealthAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health server listening", zap.String("address", cfg.Server.HealthAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("health server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("health server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Admission worker stopped")
}
