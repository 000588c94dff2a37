package main

import (
	"fmt"
	"os"

	"github.com/qri-io/docdiff/config"
	"github.com/spf13/cobra"
)

func filesCmd(g *globalFlags) *cobra.Command {
	var list, dir, output string
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Compare XML files listed in a work-list",
		Long: `Compare pairs of XML files. The work-list is a CSV with wcs_xml & micro_xml
columns naming files in the markup directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			return a.compareFiles(cmd.Context(),
				orDefault(list, a.cfg.Files.MarkupWorklist),
				orDefault(dir, a.cfg.Files.MarkupDir),
				orDefault(output, a.cfg.Report.MarkupOutput))
		},
	}
	cmd.Flags().StringVar(&list, "worklist", "", "Work-list CSV (overrides files.markup_worklist)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory of XML files (overrides files.markup_dir)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Report path, .json for JSON (overrides report.markup_output)")
	return cmd
}

func dbCmd(g *globalFlags) *cobra.Command {
	var list, output, dsn string
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Compare XML documents stored in a database",
		Long: `Compare pairs of XML documents fetched from a database table. The work-list
is a CSV with wcs_order_id & micro_order_id columns holding row identifiers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			if dsn != "" {
				a.cfg.Database.DSN = dsn
			}
			return a.compareDatabase(cmd.Context(),
				orDefault(list, a.cfg.Database.Worklist),
				orDefault(output, a.cfg.Report.DatabaseOutput))
		},
	}
	cmd.Flags().StringVar(&list, "worklist", "", "Work-list CSV (overrides database.worklist)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Data source name (overrides database.dsn)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Report path, .json for JSON (overrides report.database_output)")
	return cmd
}

func jsonCmd(g *globalFlags) *cobra.Command {
	var list, dir, output string
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Compare JSON or YAML files listed in a work-list",
		Long: `Compare pairs of nested-object documents. The work-list is a CSV with
wcs_json & micro_json columns naming files in the object directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			return a.compareObjects(cmd.Context(),
				orDefault(list, a.cfg.Files.ObjectWorklist),
				orDefault(dir, a.cfg.Files.ObjectDir),
				orDefault(output, a.cfg.Report.ObjectOutput))
		},
	}
	cmd.Flags().StringVar(&list, "worklist", "", "Work-list CSV (overrides files.object_worklist)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory of JSON/YAML files (overrides files.object_dir)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Report path, .json for JSON (overrides report.object_output)")
	return cmd
}

func dirsCmd(g *globalFlags) *cobra.Command {
	var pattern, output string
	cmd := &cobra.Command{
		Use:   "dirs <reference-dir> <candidate-dir>",
		Short: "Compare same-named files of two directories",
		Long: `Compare every file under the reference directory matching the pattern with
the file at the same relative path under the candidate directory. XML & HTML
files are compared as markup, JSON & YAML files as nested objects.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			return a.compareDirs(cmd.Context(), args[0], args[1], pattern, output)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "**/*.{xml,html,htm,json,yaml,yml}", "Files to compare, doublestar syntax")
	cmd.Flags().StringVarP(&output, "output", "o", "all_differences_dirs.csv", "Report path, .json for JSON")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ProjectConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.DefaultConfig().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
