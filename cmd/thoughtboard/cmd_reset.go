package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved board and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.Reset(cmd.Context(), yes); err != nil {
				return fmt.Errorf("reset: %w", confirmHint(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Board reset")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting all data")
	return cmd
}
