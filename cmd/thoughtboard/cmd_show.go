package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thoughtboard/internal/models"
)

func showCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show memories, thoughts, and custom templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			s, err := openBoard(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			defer func() { _ = s.Close() }()

			snap := s.board.Snapshot()
			if outputJSON {
				out, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return fmt.Errorf("show: marshaling JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			renderBoard(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output the saved document as JSON")
	return cmd
}

// renderBoard prints the board as an indented outline. Collapsed
// categories hide their items.
func renderBoard(w io.Writer, st models.State) {
	fmt.Fprintln(w, "Memories:")
	if len(st.Memories) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, cat := range st.Memories {
		marker := "v"
		if cat.Collapsed {
			marker = ">"
		}
		fmt.Fprintf(w, "  %s %s [%s] (%d)\n", marker, cat.Name, cat.ID, len(cat.Items))
		if cat.Collapsed {
			continue
		}
		for _, k := range cat.Items {
			fmt.Fprintf(w, "      %s: %s [%s]\n", k.Name, k.Relation, k.ID)
		}
	}

	fmt.Fprintln(w, "\nThoughts:")
	if len(st.Thoughts) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, th := range st.Thoughts {
		fmt.Fprintf(w, "  %s [%s]\n", th.Name, th.ID)
		for i, p := range th.DroppedItems {
			fmt.Fprintf(w, "    #%d %s\n", i, describeRef(p.Ref))
		}
		if th.Text != "" {
			fmt.Fprintf(w, "    text: %s\n", truncate(th.Text, 60))
		}
	}

	if len(st.CustomTemplates) > 0 {
		fmt.Fprintf(w, "\nCustom templates: %d\n", len(st.CustomTemplates))
	}
}

func describeRef(ref models.Reference) string {
	switch r := ref.(type) {
	case models.CategoryRef:
		return fmt.Sprintf("category %s [%s]", r.Name, r.ID)
	case models.KnowledgeRef:
		return fmt.Sprintf("knowledge %s: %s [%s]", r.Name, r.Relation, r.ID)
	default:
		return "(unknown)"
	}
}
