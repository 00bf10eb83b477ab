package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shadow/internal/material"
	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/practice"
)

var (
	materialTitle       string
	materialDescription string
	materialDifficulty  string
	materialFile        string

	listDifficulty string
	listLimit      int
	listOffset     int
)

func newMaterialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Manage practice materials",
	}

	create := &cobra.Command{
		Use:   "create [sentences...]",
		Short: "Create a material and synthesize its audio",
		RunE:  withApp(runMaterialCreate),
	}
	create.Flags().StringVar(&materialTitle, "title", "", "material title")
	create.Flags().StringVar(&materialDescription, "description", "", "material description")
	create.Flags().StringVar(&materialDifficulty, "difficulty", string(model.Beginner), "beginner, intermediate or advanced")
	create.Flags().StringVar(&materialFile, "file", "", "read the text from a file")

	list := &cobra.Command{
		Use:   "list",
		Short: "List materials",
		Args:  cobra.NoArgs,
		RunE:  withApp(runMaterialList),
	}
	list.Flags().StringVar(&listDifficulty, "difficulty", "", "difficulty filter")
	list.Flags().IntVar(&listLimit, "limit", 20, "maximum rows")
	list.Flags().IntVar(&listOffset, "offset", 0, "rows to skip")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a material with its sentence timestamps",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runMaterialShow),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a material and its audio",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runMaterialDelete),
	}

	cmd.AddCommand(create, list, show, del)
	return cmd
}

func runMaterialCreate(cmd *cobra.Command, args []string, a *app) error {
	var sentences []string
	switch {
	case materialFile != "" && len(args) > 0:
		return fmt.Errorf("use either --file or sentence arguments")
	case materialFile != "":
		loaded, err := material.LoadSentences(materialFile)
		if err != nil {
			return fmt.Errorf("failed to read material file: %w", err)
		}
		sentences = loaded
	default:
		split, err := material.SplitSentences(strings.Join(args, " "))
		if err != nil {
			return err
		}
		sentences = split
	}

	m, err := a.svc.CreateMaterial(cmd.Context(), practice.NewMaterial{
		Title:       materialTitle,
		Description: materialDescription,
		Difficulty:  model.Difficulty(strings.ToLower(materialDifficulty)),
		Sentences:   sentences,
		CreatedBy:   a.settings.UserID,
	})
	if err != nil {
		return err
	}
	return printMaterial(cmd.OutOrStdout(), m)
}

func runMaterialList(cmd *cobra.Command, _ []string, a *app) error {
	list, err := a.svc.ListMaterials(cmd.Context(), model.MaterialFilter{
		CreatedBy:  a.settings.UserID,
		Difficulty: model.Difficulty(strings.ToLower(listDifficulty)),
		Limit:      listLimit,
		Offset:     listOffset,
	})
	if err != nil {
		return err
	}
	return printMaterialList(cmd.OutOrStdout(), list)
}

func runMaterialShow(cmd *cobra.Command, args []string, a *app) error {
	m, err := a.svc.Material(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printMaterial(cmd.OutOrStdout(), m)
}

func runMaterialDelete(cmd *cobra.Command, args []string, a *app) error {
	if err := a.svc.DeleteMaterial(cmd.Context(), args[0], a.settings.UserID); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return err
}
