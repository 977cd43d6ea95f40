package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/cache"
	"github.com/hfern/tagtask/internal/config"
	"github.com/hfern/tagtask/internal/store"
	"github.com/hfern/tagtask/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: "sync",
	Short:   "Query cache management",
	Long: `Manage the SQLite query cache (.tagtask/cache.db).

The cache mirrors the task document for fast read-only queries. The
document remains the source of truth; the cache is rebuilt from it.`,
}

var cacheSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the query cache from the task document",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		snap := loadSnapshot(cfg)

		db, err := cache.Open(cfg.CachePath)
		if err != nil {
			fatalf("%v", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			fatalf("%v", err)
		}

		start := time.Now()
		if err := db.Sync(snap.Doc); err != nil {
			fatalf("%v", err)
		}

		taskCount, _ := db.TaskCount()
		depCount, _ := db.DepCount()
		fmt.Printf("%s Cache synced in %v\n", ui.RenderPass("✓"), time.Since(start).Round(time.Millisecond))
		fmt.Printf("   Tasks: %d\n", taskCount)
		fmt.Printf("   Deps: %d\n", depCount)
		fmt.Printf("   Cache: %s\n", cfg.CachePath)
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show query cache status",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		info, err := os.Stat(cfg.CachePath)
		if os.IsNotExist(err) {
			fmt.Printf("\n%s Query cache not initialized\n", ui.RenderWarn("⚠"))
			fmt.Printf("   Run 'tgt cache sync' to create it\n\n")
			return
		}
		if err != nil {
			fatalf("failed to check cache: %v", err)
		}

		db, err := cache.Open(cfg.CachePath)
		if err != nil {
			fatalf("%v", err)
		}
		defer db.Close()

		taskCount, err := db.TaskCount()
		if err != nil {
			fatalf("%v", err)
		}
		depCount, err := db.DepCount()
		if err != nil {
			fatalf("%v", err)
		}
		tagCount, err := db.TagCount()
		if err != nil {
			fatalf("%v", err)
		}
		dangling, err := db.DanglingDeps()
		if err != nil {
			fatalf("%v", err)
		}

		fmt.Printf("\n%s Query Cache Status\n\n", ui.RenderAccent("•"))
		fmt.Printf("Location: %s\n", cfg.CachePath)
		fmt.Printf("Size: %s\n", formatSize(info.Size()))
		fmt.Printf("Tags: %d\n", tagCount)
		fmt.Printf("Tasks: %d\n", taskCount)
		fmt.Printf("Dependencies: %d\n", depCount)
		fmt.Printf("Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
		if len(dangling) > 0 {
			fmt.Printf("\n%s %d dangling dependency edge(s):\n", ui.RenderWarn("⚠"), len(dangling))
			for _, e := range dangling {
				fmt.Printf("   %s: task %d → missing %d\n", e.Tag, e.TaskID, e.DependsOn)
			}
		}
		fmt.Println()
	},
}

func init() {
	cacheCmd.AddCommand(cacheSyncCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	rootCmd.AddCommand(cacheCmd)
}

// syncCacheBestEffort refreshes the cache after a successful mutation.
// The cache is derived state; failure only warrants a warning.
func syncCacheBestEffort(cfg *config.Config) {
	snap, err := store.Load(cfg.DocumentPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cache not refreshed: %v\n", err)
		return
	}
	db, err := cache.Open(cfg.CachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cache not refreshed: %v\n", err)
		return
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cache not refreshed: %v\n", err)
		return
	}
	if err := db.Sync(snap.Doc); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cache not refreshed: %v\n", err)
	}
}

func formatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
