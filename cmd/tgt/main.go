// Command tgt manages a tagged task store: an on-disk JSON document of
// named task partitions with dependency-aware move operations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/config"
	"github.com/hfern/tagtask/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tgt",
	Short: "Tagged task store manager",
	Long: `tgt manages a persisted collection of tasks organized into named,
mutually isolated tags. Tasks may depend on each other and carry nested
subtasks; moves within and across tags preserve dependency integrity and
commit atomically.

The store lives in .tagtask/tasks.json, found by walking up from the
current directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagFile string
	flagYes  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "task document path (overrides project config)")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "assume yes for confirmation prompts")

	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Task commands:"},
		&cobra.Group{ID: "sync", Title: "Sync and watch commands:"},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves project configuration, honoring the --file override.
func loadConfig() *config.Config {
	dir := config.FindProjectDir()
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			fatalf("cannot determine working directory: %v", err)
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		fatalf("%v", err)
	}
	if flagFile != "" {
		cfg.DocumentPath = flagFile
	}
	return cfg
}

// loadSnapshot loads the document or exits with a readable error.
func loadSnapshot(cfg *config.Config) *store.Snapshot {
	snap, err := store.Load(cfg.DocumentPath)
	if err != nil {
		fatalf("%v", err)
	}
	return snap
}

// resolveTag picks the tag to operate on: explicit flag, configured
// default, then the document's own marker.
func resolveTag(cfg *config.Config, snap *store.Snapshot, flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.DefaultTag != "" {
		return cfg.DefaultTag
	}
	return snap.Doc.ActiveTag()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
