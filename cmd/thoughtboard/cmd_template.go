package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thoughtboard/internal/catalog"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Load, save, and share templates of memory trees",
	}
	cmd.AddCommand(
		templateListCmd(),
		templateLoadCmd(),
		templateSaveCmd(),
		templateDeleteCmd(),
		templateExportCmd(),
		templateImportCmd(),
	)
	return cmd
}

func templateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("template list: %w", err)
			}
			defer func() { _ = s.Close() }()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSOURCE\tCATEGORIES")
			for _, e := range s.board.Templates() {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.Source, e.Categories)
			}
			return tw.Flush()
		},
	}
}

func templateLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Append a template's categories to the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("template load: %w", err)
			}
			defer func() { _ = s.Close() }()

			n, err := s.board.LoadNamedTemplate(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("template load: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded template %s: %d categories added\n", args[0], n)
			return nil
		},
	}
}

func templateSaveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current memories as a custom template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("template save: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.SaveAsTemplate(cmd.Context(), args[0], force); err != nil {
				return fmt.Errorf("template save: %w", overwriteHint(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing template")
	return cmd
}

func templateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a custom template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("template delete: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("template delete: %w", err)
			}
			return nil
		},
	}
}

func templateExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a custom template as JSON",
		Long:  "Export a custom template as JSON. Writes to <name>.json unless --output is given; use --output - for stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("template export: %w", err)
			}
			defer func() { _ = s.Close() }()

			data, err := s.board.ExportTemplate(args[0])
			if err != nil {
				return fmt.Errorf("template export: %w", err)
			}

			if outPath == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if outPath == "" {
				outPath = args[0] + ".json"
			}
			if err := os.WriteFile(outPath, data, 0o600); err != nil {
				return fmt.Errorf("template export: writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported template %s to %s\n", args[0], outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file path (- for stdout)")
	return cmd
}

func templateImportCmd() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a template file as a custom template",
		Long:  "Import a template file. The template is named after the file unless --name is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("template import: reading %s: %w", args[0], err)
			}
			if name == "" {
				name = catalog.TemplateNameFromFile(args[0])
			}

			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("template import: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.ImportTemplate(cmd.Context(), name, data, force); err != nil {
				return fmt.Errorf("template import: %w", overwriteHint(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported template %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "template name (default: file name without extension)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing template")
	return cmd
}
