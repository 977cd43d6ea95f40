package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/task"
	"github.com/hfern/tagtask/internal/ui"
)

var listTag string

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "tasks",
	Short:   "List tasks in a tag",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		snap := loadSnapshot(cfg)

		tag := resolveTag(cfg, snap, listTag)
		p := snap.Doc.Tag(tag)
		if p == nil {
			fatalf("tag %q not found", tag)
		}

		fmt.Printf("%s %s\n\n", ui.RenderAccent("Tag:"), tag)
		if len(p.Tasks) == 0 {
			fmt.Println(ui.RenderDim("  (no tasks)"))
			return
		}
		for _, t := range p.Tasks {
			fmt.Printf("  %3d  %-12s %s\n", t.ID, renderStatus(t.Status), t.Title)
			if len(t.Dependencies) > 0 {
				deps := make([]string, len(t.Dependencies))
				for i, dep := range t.Dependencies {
					deps[i] = fmt.Sprintf("%d", dep)
				}
				fmt.Printf("       %s\n", ui.RenderDim("depends on: "+strings.Join(deps, ", ")))
			}
			for _, st := range t.Subtasks {
				fmt.Printf("       %d.%d %-12s %s\n", t.ID, st.ID, renderStatus(st.Status), st.Title)
			}
		}
	},
}

func renderStatus(s task.Status) string {
	switch s {
	case task.StatusDone:
		return ui.RenderPass(string(s))
	case task.StatusBlocked, task.StatusCancelled:
		return ui.RenderFail(string(s))
	case task.StatusInProgress:
		return ui.RenderAccent(string(s))
	default:
		return string(s)
	}
}

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "tag to list (default: current tag)")
	rootCmd.AddCommand(listCmd)
}
