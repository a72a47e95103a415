// cmd/tools/portalctl/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"admission-portal/internal/common/camunda"
	"admission-portal/internal/common/config"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/observability"
	"admission-portal/internal/store"
)

var rootFlags struct {
	configFile string
	logLevel   string
	output     string
}

var rootCmd = &cobra.Command{
	Use:           "portalctl",
	Short:         "Operate the admission portal: drafts, submissions and reviews",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configFile, "config", "c", "", "Config file (default: configs/config.yaml plus APP_ENVIRONMENT overlay)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Override logging.level")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.output, "output", "o", formatYAML, "Output format: yaml or json")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(submissionsCmd)
	rootCmd.AddCommand(applicationsCmd)
	rootCmd.AddCommand(reviewCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// session is everything a command needs after the config has been read.
type session struct {
	cfg      *config.Config
	zapLog   *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	backends *store.Backends
}

func loadConfig() (*config.Config, error) {
	if rootFlags.configFile != "" {
		return config.LoadFromFile(rootFlags.configFile)
	}
	return config.Load()
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rootFlags.logLevel != "" {
		cfg.Logging.Level = rootFlags.logLevel
	}
	// stdout carries command output.
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New("portalctl")
	if err != nil {
		log.Warn("metrics disabled", map[string]interface{}{"error": err})
		obs = observability.NewNoop()
	}

	backends, err := store.Open(ctx, cfg, log)
	if err != nil {
		obs.Shutdown()
		return nil, err
	}

	return &session{cfg: cfg, zapLog: zapLog, log: log, obs: obs, backends: backends}, nil
}

func (s *session) Close() {
	s.backends.Close()
	s.obs.Shutdown()
	_ = s.zapLog.Sync()
}

// reviewStarter connects to Zeebe for the submission hook. A missing or
// unreachable broker only disables the hook.
func (s *session) reviewStarter() (*camunda.ProcessStarter, func()) {
	if s.cfg.Camunda.BrokerAddress == "" {
		return nil, func() {}
	}
	client, err := camunda.NewClientWithConfig(camunda.ConfigFrom(s.cfg.Camunda))
	if err != nil {
		s.log.Warn("zeebe unavailable, review process will not be started", map[string]interface{}{
			"broker": s.cfg.Camunda.BrokerAddress,
			"error":  err,
		})
		return nil, func() {}
	}
	starter := camunda.NewProcessStarter(client, s.cfg.Wizard.ReviewProcessID, s.log)
	return starter, func() { _ = client.Close() }
}
