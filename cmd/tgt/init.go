package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/config"
	"github.com/hfern/tagtask/internal/store"
	"github.com/hfern/tagtask/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "tasks",
	Short:   "Initialize a task store in the current directory",
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := os.Getwd()
		if err != nil {
			fatalf("cannot determine working directory: %v", err)
		}

		base := filepath.Join(dir, config.DirName)
		if err := os.MkdirAll(base, 0755); err != nil {
			fatalf("failed to create %s: %v", base, err)
		}

		cfg, err := config.Load(dir)
		if err != nil {
			fatalf("%v", err)
		}

		if _, err := os.Stat(cfg.DocumentPath); err == nil {
			fmt.Printf("%s Task store already exists at %s\n", ui.RenderWarn("⚠"), cfg.DocumentPath)
			return
		}

		snap := store.New(cfg.DocumentPath)
		if err := snap.Save(); err != nil {
			fatalf("%v", err)
		}

		fmt.Printf("%s Initialized task store at %s\n", ui.RenderPass("✓"), cfg.DocumentPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
