package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func knowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"k"},
		Short:   "Manage knowledge items inside categories",
	}
	cmd.AddCommand(
		knowledgeAddCmd(),
		knowledgeEditCmd(),
		knowledgeDeleteCmd(),
	)
	return cmd
}

func knowledgeAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <category-id> <name> <relation>",
		Short: "Add a knowledge item to a category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("knowledge add: %w", err)
			}
			defer func() { _ = s.Close() }()

			k, err := s.board.CreateKnowledge(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("knowledge add: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", k.Name, k.ID)
			return nil
		},
	}
}

func knowledgeEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <knowledge-id> <name> <relation>",
		Short: "Replace a knowledge item's name and relation",
		Long:  "Replace a knowledge item's name and relation. If either value is empty nothing changes.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("knowledge edit: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.EditKnowledge(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return fmt.Errorf("knowledge edit: %w", err)
			}
			return nil
		},
	}
}

func knowledgeDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <category-id> <knowledge-id>",
		Short: "Delete a knowledge item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("knowledge delete: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.DeleteKnowledge(cmd.Context(), args[0], args[1], yes); err != nil {
				return fmt.Errorf("knowledge delete: %w", confirmHint(err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
