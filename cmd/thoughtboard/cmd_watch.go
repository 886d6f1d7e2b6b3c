package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thoughtboard/internal/config"
	"github.com/ajitpratap0/thoughtboard/internal/models"
	"github.com/ajitpratap0/thoughtboard/internal/persistence"
	"github.com/ajitpratap0/thoughtboard/internal/store"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the saved board and print a summary whenever it changes",
		Long: `Watch the saved board document and print a summary after every change,
for example while another process runs "thoughtboard serve". Only the file
backend can be watched.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().Duration("debounce", 300*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if cfg.Storage.Backend != config.BackendFile {
		return fmt.Errorf("watch: only the file backend can be watched (storage.backend is %q)", cfg.Storage.Backend)
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")
	logger := newLogger()

	kv, err := store.NewFileKV(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = kv.Close() }()
	gw := persistence.New(kv, cfg.Storage.Key, logger)
	docPath := kv.Path(gw.Key())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic saves replace the file, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(docPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(docPath), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s for changes...\n", docPath)
	printSummary(out, gw.Load(cmd.Context()))

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDocumentChange(event, docPath) {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			pending = false
			printSummary(out, gw.Load(cmd.Context()))
		}
	}
}

// isDocumentChange reports whether event touches the saved document.
// Temp files written during an atomic save are ignored.
func isDocumentChange(event fsnotify.Event, docPath string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(docPath) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

func printSummary(w io.Writer, st *models.State) {
	s := st.Stats()
	fmt.Fprintf(w, "[%s] %d categories, %d knowledge items, %d thoughts, %d placed, %d custom templates\n",
		time.Now().Format("15:04:05"), s.Categories, s.KnowledgeItems, s.Thoughts, s.PlacedRefs, s.CustomTemplates)
}
