package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shadow/internal/practice"
	"github.com/verte-zerg/shadow/internal/tui"
)

var (
	evalTranscript string
	evalAudio      string
	evalDuration   int
	evalSave       bool
)

func newPracticeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "practice <material-id>",
		Short: "Listen with subtitles, then type what you said",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runPracticeCmd),
	}
}

func runPracticeCmd(cmd *cobra.Command, args []string, a *app) error {
	m, err := a.svc.Material(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	submit := func(ctx context.Context, transcript string, seconds int) (practice.Submission, error) {
		return a.svc.Submit(ctx, a.settings.UserID, m.ID, transcript, seconds)
	}
	program := tea.NewProgram(tui.NewModel(m, submit, nil), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	player, ok := final.(*tui.Model)
	if !ok {
		return nil
	}
	sub, err := player.Result()
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	return printSubmission(cmd.OutOrStdout(), *sub)
}

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <material-id>",
		Short: "Score a transcript or recording against a material",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runEvaluateCmd),
	}
	cmd.Flags().StringVar(&evalTranscript, "transcript", "", "what you said")
	cmd.Flags().StringVar(&evalAudio, "audio", "", "recording to transcribe")
	cmd.Flags().IntVar(&evalDuration, "duration", 0, "practice seconds (default: material length)")
	cmd.Flags().BoolVar(&evalSave, "save", false, "record the attempt in your progress")
	cmd.MarkFlagsMutuallyExclusive("transcript", "audio")
	cmd.MarkFlagsOneRequired("transcript", "audio")
	return cmd
}

func runEvaluateCmd(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	transcript := evalTranscript
	if evalAudio != "" {
		text, err := transcribeFile(ctx, a, evalAudio)
		if err != nil {
			return err
		}
		transcript = text
	}

	out := cmd.OutOrStdout()
	if !evalSave {
		eval, err := a.svc.Evaluate(ctx, args[0], transcript, evalDuration)
		if err != nil {
			return err
		}
		return printEvaluation(out, eval)
	}
	sub, err := a.svc.Submit(ctx, a.settings.UserID, args[0], transcript, evalDuration)
	if err != nil {
		return err
	}
	return printSubmission(out, sub)
}

func newTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Print the transcript of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			text, err := transcribeFile(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		}),
	}
}

func transcribeFile(ctx context.Context, a *app, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open recording: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			a.log.Debug().Err(cerr).Msg("failed to close recording")
		}
	}()
	return a.svc.Transcribe(ctx, f)
}
