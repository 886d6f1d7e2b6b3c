package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func thoughtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "thought",
		Aliases: []string{"t"},
		Short:   "Manage thought sheets",
	}
	cmd.AddCommand(
		thoughtAddCmd(),
		thoughtRenameCmd(),
		thoughtDeleteCmd(),
		thoughtTextCmd(),
	)
	return cmd
}

func thoughtAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create an empty thought",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("thought add: %w", err)
			}
			defer func() { _ = s.Close() }()

			th, err := s.board.CreateThought(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("thought add: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created thought %s (%s)\n", th.Name, th.ID)
			return nil
		},
	}
}

func thoughtRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <thought-id> <name>",
		Short: "Rename a thought",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("thought rename: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.RenameThought(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("thought rename: %w", err)
			}
			return nil
		},
	}
}

func thoughtDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <thought-id>",
		Short: "Delete a thought and everything placed on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("thought delete: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.DeleteThought(cmd.Context(), args[0], yes); err != nil {
				return fmt.Errorf("thought delete: %w", confirmHint(err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func thoughtTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <thought-id> [text]",
		Short: "Replace a thought's text (read from stdin when omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 2 {
				text = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("thought text: reading stdin: %w", err)
				}
				text = string(data)
			}

			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("thought text: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.SetThoughtText(cmd.Context(), args[0], text); err != nil {
				return fmt.Errorf("thought text: %w", err)
			}
			return nil
		},
	}
}
