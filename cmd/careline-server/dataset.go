package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/i-monteiro/linhas-de-cuidado/internal/config"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/export"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect and export the stage datasets",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the stage datasets with row and column counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *tabular.Store) error {
				return listDatasets(ctx, store, cmd.OutOrStdout())
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <stage>",
		Short: "Print a stage dataset as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := stageArg(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), func(ctx context.Context, store *tabular.Store) error {
				return showDataset(ctx, store, stage, cmd.OutOrStdout())
			})
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <stage>",
		Short: "Export a stage dataset as csv or parquet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := stageArg(args[0])
			if err != nil {
				return err
			}
			rawFormat, _ := cmd.Flags().GetString("format")
			format, err := export.ParseFormat(rawFormat)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			return withStore(cmd.Context(), func(ctx context.Context, store *tabular.Store) error {
				if out == "" || out == "-" {
					return exportDataset(ctx, store, stage, format, cmd.OutOrStdout())
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := exportDataset(ctx, store, stage, format, f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %s to %s (%s)\n", stage.Dataset, out, format)
				return nil
			})
		},
	}
	exportCmd.Flags().String("format", "csv", "export format: csv or parquet")
	exportCmd.Flags().String("out", "", "output file (default stdout)")

	cmd.AddCommand(listCmd, showCmd, exportCmd)
	return cmd
}

func stageArg(slug string) (careline.Stage, error) {
	stage, ok := careline.StageBySlug(slug)
	if !ok {
		slugs := make([]string, len(careline.Stages))
		for i, s := range careline.Stages {
			slugs[i] = s.Slug
		}
		return careline.Stage{}, fmt.Errorf("unknown stage %q (want one of %s)", slug, strings.Join(slugs, ", "))
	}
	return stage, nil
}

// withStore opens the configured dataset backend for the duration of fn.
func withStore(ctx context.Context, fn func(context.Context, *tabular.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	backend, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("open dataset storage: %w", err)
	}
	defer storage.Close(backend)
	return fn(ctx, tabular.NewStore(backend))
}

func listDatasets(ctx context.Context, store *tabular.Store, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tDATASET\tROWS\tCOLUMNS")
	for _, stage := range careline.Stages {
		ok, err := store.Exists(ctx, stage.Dataset)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\n", stage.Slug, stage.Dataset)
			continue
		}
		t, err := store.Load(ctx, stage.Dataset)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", stage.Slug, stage.Dataset, t.Len(), len(t.Columns))
	}
	return tw.Flush()
}

func showDataset(ctx context.Context, store *tabular.Store, stage careline.Stage, w io.Writer) error {
	t, err := loadWritten(ctx, store, stage)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func exportDataset(ctx context.Context, store *tabular.Store, stage careline.Stage, format export.Format, w io.Writer) error {
	t, err := loadWritten(ctx, store, stage)
	if err != nil {
		return err
	}
	if err := export.Write(w, t, format); err != nil {
		return fmt.Errorf("export %s: %w", stage.Dataset, err)
	}
	return nil
}

func loadWritten(ctx context.Context, store *tabular.Store, stage careline.Stage) (*tabular.Table, error) {
	ok, err := store.Exists(ctx, stage.Dataset)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("dataset %s has not been written yet", stage.Dataset)
	}
	return store.Load(ctx, stage.Dataset)
}
