package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/pipeline"
)

var flagImportFull bool

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import JSONL exports from <dir>/<user>/<kind>.jsonl",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportFull, "full", false, "Reimport every file, even unchanged ones")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := args[0]
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%25 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Importing %s", cli.RenderProgressBar(current, total, 30))
		}
	}

	run := pipeline.ImportIncremental
	if flagImportFull {
		run = pipeline.Import
	}
	res, err := run(contextOf(cmd), dir, a.store, a.log, progressFn)
	if err != nil {
		return err
	}

	if res.TotalFiles == 0 {
		fmt.Println("  No exports found.")
		return nil
	}

	if !flagQuiet {
		fmt.Fprintln(os.Stderr)
	}
	fmt.Printf("  Imported %s records from %d files (%d users)\n",
		formatNumber(int64(res.Records)), res.ParsedFiles, res.UserCount)
	if res.Skipped > 0 {
		fmt.Printf("  %d unchanged files skipped\n", res.Skipped)
	}
	if res.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed lines ignored\n", res.ParseErrors)
	}
	if n := res.FileErrors + res.SaveErrors; n > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be imported (see log)\n", n)
	}

	counts, err := a.store.Counts(contextOf(cmd))
	if err == nil && !flagQuiet {
		fmt.Printf("  Database now holds %d trackables, %d completions, %d ledger entries\n",
			counts["trackables"], counts["completions"], counts["ledger_entries"])
	}
	return nil
}
