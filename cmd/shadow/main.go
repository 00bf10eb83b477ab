// Package main provides the CLI entrypoint for shadow.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shadow/internal/config"
	"github.com/verte-zerg/shadow/internal/feedback"
	"github.com/verte-zerg/shadow/internal/logging"
	"github.com/verte-zerg/shadow/internal/practice"
	"github.com/verte-zerg/shadow/internal/progression"
	"github.com/verte-zerg/shadow/internal/speech"
	"github.com/verte-zerg/shadow/internal/store"
)

var (
	flagUser     string
	flagLogLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shadow",
		Short:         "Language shadowing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flagUser, "user", config.DefaultUserID, "user the progress belongs to")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newMaterialCmd())
	rootCmd.AddCommand(newPracticeCmd())
	rootCmd.AddCommand(newEvaluateCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newGoalCmd())
	rootCmd.AddCommand(newAchievementsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the resolved settings and the opened collaborators of a command.
type app struct {
	settings config.Settings
	store    *store.Store
	svc      *practice.Service
	log      zerolog.Logger
}

func setup(cmd *cobra.Command) (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringFlag(cmd, "user", &settings.UserID, flagUser)
	applyStringFlag(cmd, "log-level", &settings.LogLevel, flagLogLevel)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: settings.LogLevel, Format: settings.LogFormat})
	logger := logging.WithComponent("cli")

	if err := os.MkdirAll(filepath.Dir(settings.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.Open(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug().Str("db", settings.DBPath).Str("user", settings.UserID).Msg("store opened")

	svc := practice.New(practice.Options{
		Store:               st,
		Synthesizer:         speech.NewSilentSynthesizer(settings.AudioDir, settings.WordsPerMinute, settings.SampleRate),
		Transcriber:         speech.MockTranscriber{},
		Feedback:            feedback.Template{},
		Engine:              progression.New(progression.Config{DailyTarget: settings.DailyTarget}),
		Logger:              logging.WithComponent("practice"),
		DegradeOnStoreError: settings.DegradeOnStoreError,
	})
	return &app{settings: settings, store: st, svc: svc, log: logger}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close db")
	}
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}
