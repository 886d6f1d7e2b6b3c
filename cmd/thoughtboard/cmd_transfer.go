package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thoughtboard/internal/transfer"
)

func dragCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drag <source-id>",
		Short: "Print the drag payload for a category or knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("drag: %w", err)
			}
			defer func() { _ = s.Close() }()

			ref, ok := s.board.DragSource(args[0])
			if !ok {
				return fmt.Errorf("drag: no category or knowledge item with id %q", args[0])
			}
			payload, err := transfer.Encode(ref)
			if err != nil {
				return fmt.Errorf("drag: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
}

func dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <thought-id> [payload]",
		Short: "Place a drag payload on a thought (payload read from stdin when omitted)",
		Long: `Place a drag payload on a thought. Pipe from drag to move an item:

  thoughtboard drag id-3 | thoughtboard drop id-7

Payloads that cannot be decoded are discarded with a warning.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			if len(args) == 2 {
				payload = []byte(args[1])
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("drop: reading stdin: %w", err)
				}
				payload = bytes.TrimSpace(data)
			}

			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("drop: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.Drop(cmd.Context(), args[0], payload); err != nil {
				return fmt.Errorf("drop: %w", err)
			}
			return nil
		},
	}
}

func placeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place <thought-id> <source-id>",
		Short: "Drag a category or knowledge item onto a thought in one step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("place: %w", err)
			}
			defer func() { _ = s.Close() }()

			if _, ok := s.board.Thought(args[0]); !ok {
				return fmt.Errorf("place: no thought with id %q", args[0])
			}
			ref, ok := s.board.DragSource(args[1])
			if !ok {
				return fmt.Errorf("place: no category or knowledge item with id %q", args[1])
			}
			if err := s.board.DropReference(cmd.Context(), args[0], ref); err != nil {
				return fmt.Errorf("place: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Placed %s on %s\n", ref.RefName(), args[0])
			return nil
		},
	}
}

func unplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unplace <thought-id> <index>",
		Short: "Remove a placed reference from a thought by its position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("unplace: index must be an integer: %w", err)
			}

			s, err := openBoard(cmd.Context(), newLogger())
			if err != nil {
				return fmt.Errorf("unplace: %w", err)
			}
			defer func() { _ = s.Close() }()

			if err := s.board.RemovePlacedReference(cmd.Context(), args[0], index); err != nil {
				return fmt.Errorf("unplace: %w", err)
			}
			return nil
		},
	}
}
