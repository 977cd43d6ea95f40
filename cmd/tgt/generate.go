package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/files"
	"github.com/hfern/tagtask/internal/notify"
	"github.com/hfern/tagtask/internal/ui"
)

var generateTag string

var generateCmd = &cobra.Command{
	Use:     "generate",
	GroupID: "tasks",
	Short:   "Regenerate derived per-task files",
	Long: `Rewrite the derived text files under .tagtask/files/<tag>/ from the
task document, pruning files for tasks that no longer exist.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		snap := loadSnapshot(cfg)

		tags := snap.Doc.TagNames()
		if generateTag != "" {
			if snap.Doc.Tag(generateTag) == nil {
				fatalf("tag %q not found", generateTag)
			}
			tags = []string{generateTag}
		}

		generator := files.NewGenerator(cfg.GeneratedDir, nil)
		opID := notify.NewEventID()
		for _, tag := range tags {
			if err := generator.Regenerate(tag, snap.Doc.Tag(tag), opID); err != nil {
				fatalf("%v", err)
			}
			fmt.Printf("%s Regenerated files for tag %q\n", ui.RenderPass("✓"), tag)
		}
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateTag, "tag", "", "regenerate only this tag (default: all tags)")
	rootCmd.AddCommand(generateCmd)
}
