package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/ui"
)

var tagsCmd = &cobra.Command{
	Use:     "tags",
	GroupID: "tasks",
	Short:   "List tags in the task document",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		snap := loadSnapshot(cfg)

		active := resolveTag(cfg, snap, "")
		for _, name := range snap.Doc.TagNames() {
			p := snap.Doc.Tag(name)
			marker := " "
			if name == active {
				marker = ui.RenderAccent("*")
			}
			line := fmt.Sprintf("%s %s (%d tasks)", marker, name, len(p.Tasks))
			if p.Metadata != nil && p.Metadata.Description != "" {
				line += " " + ui.RenderDim("— "+p.Metadata.Description)
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
