package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage memory categories",
	}
	cmd.AddCommand(
		categoryAddCmd(),
		categoryRenameCmd(),
		categoryDeleteCmd(),
		categoryToggleCmd(),
	)
	return cmd
}

func categoryAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("category add: %w", err)
			}
			defer func() { _ = s.Close() }()

			cat, err := s.board.CreateCategory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("category add: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", cat.Name, cat.ID)
			return nil
		},
	}
}

func categoryRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category-id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("category rename: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.RenameCategory(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("category rename: %w", err)
			}
			return nil
		},
	}
}

func categoryDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category and every knowledge item in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("category delete: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.DeleteCategory(cmd.Context(), args[0], yes); err != nil {
				return fmt.Errorf("category delete: %w", confirmHint(err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func categoryToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <category-id>",
		Short: "Collapse or expand a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("category toggle: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.ToggleCollapse(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("category toggle: %w", err)
			}
			return nil
		},
	}
}
