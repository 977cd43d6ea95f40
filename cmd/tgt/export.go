package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hfern/tagtask/internal/export"
)

var (
	exportTag    string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "tasks",
	Short:   "Export the document or one tag as JSON or YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		snap := loadSnapshot(cfg)

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			fatalf("%v", err)
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				fatalf("failed to create output file: %v", err)
			}
			defer f.Close()
			out = f
		}

		if exportTag == "" {
			if err := export.Document(out, format, snap.Doc); err != nil {
				fatalf("%v", err)
			}
			return
		}

		p := snap.Doc.Tag(exportTag)
		if p == nil {
			fatalf("tag %q not found", exportTag)
		}
		if err := export.Partition(out, format, p); err != nil {
			fatalf("%v", err)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportTag, "tag", "", "export only this tag's partition")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
