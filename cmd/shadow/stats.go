package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shadow/internal/stats"
	"github.com/verte-zerg/shadow/internal/statsui"
)

const (
	defaultHistoryLimit = 50
	missedWordsShown    = 10
)

var (
	statsPlain   bool
	historyLimit int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress",
		Args:  cobra.NoArgs,
		RunE:  withApp(runStatsCmd),
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text summary instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string, a *app) error {
	if statsPlain {
		r, err := a.svc.Overview(cmd.Context(), a.settings.UserID, defaultHistoryLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := stats.RenderSummary(out, r, 0); err != nil {
			return err
		}
		return stats.RenderMissedWords(out, r.Logs, missedWordsShown)
	}

	loader := func(ctx context.Context) (stats.Report, error) {
		return a.svc.Overview(ctx, a.settings.UserID, defaultHistoryLimit)
	}
	program := tea.NewProgram(statsui.NewModel(loader), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newGoalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goal",
		Short: "Show today's practice goal",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			r, err := a.svc.Overview(cmd.Context(), a.settings.UserID, 1)
			if err != nil {
				return err
			}
			return stats.RenderGoal(cmd.OutOrStdout(), r)
		}),
	}
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			r, err := a.svc.Overview(cmd.Context(), a.settings.UserID, 1)
			if err != nil {
				return err
			}
			return stats.RenderAchievements(cmd.OutOrStdout(), r.Achievements)
		}),
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent practice",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			r, err := a.svc.Overview(cmd.Context(), a.settings.UserID, historyLimit)
			if err != nil {
				return err
			}
			return stats.RenderHistory(cmd.OutOrStdout(), r.Logs)
		}),
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows")
	return cmd
}
