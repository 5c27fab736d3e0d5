package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PhilHem/netlog/backend/config"
	"github.com/PhilHem/netlog/backend/storage"

	"github.com/spf13/cobra"
)

var ErrMalformedLines = errors.New("text log contains malformed lines")

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Report malformed lines in the text log",
	Long: `Scan the text log and list every line that cannot be parsed.
The path defaults to text_log.path from the configuration.
Exits non-zero when any line is malformed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.C.TextLog.Path
		if len(args) == 1 {
			path = args[0]
		}
		return checkTextLog(cmd.Context(), path, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkTextLog(ctx context.Context, path string, w io.Writer) error {
	res, err := storage.NewTextStore(path, nil).Scan(ctx)
	if err != nil {
		return err
	}
	if res.Missing {
		return fmt.Errorf("%s does not exist", path)
	}

	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "%s:%d: %s: %q\n", path, warn.Line, warn.Reason, warn.Text)
	}
	fmt.Fprintf(w, "%s: %d entries, %d malformed\n", path, len(res.Entries), len(res.Warnings))

	if len(res.Warnings) > 0 {
		return fmt.Errorf("%w: %d", ErrMalformedLines, len(res.Warnings))
	}
	return nil
}
