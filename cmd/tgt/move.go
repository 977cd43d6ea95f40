package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/files"
	"github.com/hfern/tagtask/internal/logging"
	"github.com/hfern/tagtask/internal/move"
	"github.com/hfern/tagtask/internal/notify"
	"github.com/hfern/tagtask/internal/task"
	"github.com/hfern/tagtask/internal/ui"
)

var (
	moveFrom       string
	moveTo         string
	moveNewIDs     string
	moveWithDeps   bool
	moveIgnoreDeps bool
	moveCreateTag  bool
	moveForce      bool
)

var moveCmd = &cobra.Command{
	Use:     "move <id[,id...]>",
	GroupID: "tasks",
	Short:   "Move tasks within or across tags",
	Long: `Move one or more tasks, or promote a subtask to a top-level task.

Within-tag moves reassign IDs and require --new-ids; a compound ID like
"3.1" promotes that subtask. Cross-tag moves (--to) assign fresh IDs in
the destination and refuse to sever dependency edges unless told how:
--with-dependencies pulls dependencies along, --ignore-dependencies drops
the severed edges.

Examples:
  tgt move 3 --new-ids 7
  tgt move 3.1 --new-ids 7
  tgt move 1,2 --from backlog --to in-progress
  tgt move 1 --to in-progress --with-dependencies`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		snap := loadSnapshot(cfg)

		refs, err := task.ParseRefs(args[0])
		if err != nil {
			fatalf("%v", err)
		}

		req := move.Request{
			SourceTag:          resolveTag(cfg, snap, moveFrom),
			TargetTag:          moveTo,
			Refs:               refs,
			WithDependencies:   moveWithDeps,
			IgnoreDependencies: moveIgnoreDeps,
			CreateTarget:       moveCreateTag,
			Overwrite:          moveForce,
		}

		if !req.IsCrossTag() {
			req.NewIDs, err = parseNewIDs(refs, moveNewIDs)
			if err != nil {
				fatalf("%v", err)
			}
		}

		if moveForce && !confirm(fmt.Sprintf("Overwrite existing tasks in tag %q?", req.SourceTag)) {
			fmt.Println("Aborted.")
			return
		}

		logger := logging.NewQuiet("[move] ", cfg.LogFile)
		registry := notify.NewRegistry(logger)
		generator := files.NewGenerator(cfg.GeneratedDir, registry)

		svc := move.NewService(cfg.DocumentPath, &move.ServiceConfig{
			MaxRetries: cfg.MaxRetries,
			Logger:     logger,
			Registry:   registry,
			Regenerate: generator.Regenerate,
		})

		summary, err := svc.Move(req)
		if err != nil {
			fatalf("%v", err)
		}

		printSummary(summary)
		syncCacheBestEffort(cfg)
	},
}

func init() {
	moveCmd.Flags().StringVar(&moveFrom, "from", "", "source tag (default: current tag)")
	moveCmd.Flags().StringVar(&moveTo, "to", "", "destination tag for a cross-tag move")
	moveCmd.Flags().StringVar(&moveNewIDs, "new-ids", "", "comma-separated new IDs for a within-tag move")
	moveCmd.Flags().BoolVar(&moveWithDeps, "with-dependencies", false, "pull dependencies along on a cross-tag move")
	moveCmd.Flags().BoolVar(&moveIgnoreDeps, "ignore-dependencies", false, "drop dependency edges severed by a cross-tag move")
	moveCmd.Flags().BoolVar(&moveCreateTag, "create-tag", false, "create the destination tag if it does not exist")
	moveCmd.Flags().BoolVar(&moveForce, "force", false, "overwrite an existing task at the requested ID")
	rootCmd.AddCommand(moveCmd)
}

// parseNewIDs pairs the requested new IDs with the refs, in order.
func parseNewIDs(refs []task.Ref, raw string) (map[string]int, error) {
	if raw == "" {
		return nil, fmt.Errorf("--new-ids is required for a within-tag move")
	}
	parts := strings.Split(raw, ",")
	if len(parts) != len(refs) {
		return nil, fmt.Errorf("--new-ids lists %d IDs for %d tasks", len(parts), len(refs))
	}
	ids := make(map[string]int, len(refs))
	for i, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid new ID %q: must be a positive integer", part)
		}
		ids[refs[i].String()] = id
	}
	return ids, nil
}

// confirm asks the user before a destructive step. Non-interactive runs
// and --yes skip the prompt.
func confirm(title string) bool {
	if flagYes || !ui.IsTerminal() {
		return true
	}
	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	return confirmed
}

func printSummary(summary *move.Summary) {
	for _, m := range summary.Moved {
		if m.FromTag == m.ToTag {
			fmt.Printf("%s Moved %s → %d in %q (%s)\n",
				ui.RenderPass("✓"), m.OldID, m.ID, m.ToTag, m.Title)
		} else {
			fmt.Printf("%s Moved %s:%s → %s:%d (%s)\n",
				ui.RenderPass("✓"), m.FromTag, m.OldID, m.ToTag, m.ID, m.Title)
		}
	}
	if summary.CreatedTag != "" {
		fmt.Printf("%s Created tag %q\n", ui.RenderAccent("+"), summary.CreatedTag)
	}
	if summary.ClearedDependencies > 0 {
		fmt.Printf("%s Cleared %d dependency reference(s)\n",
			ui.RenderWarn("⚠"), summary.ClearedDependencies)
	}
	for _, edge := range summary.DanglingInSource {
		fmt.Printf("%s Task %d still references moved task %d in the source tag\n",
			ui.RenderWarn("⚠"), edge.TaskID, edge.DependsOn)
	}
	fmt.Printf("%s\n", ui.RenderDim("operation "+summary.OperationID))
}
