package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/report"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the shellprobe build",
	Long: `Print the version, commit and build date stamped into this binary.
With --json the same fields plus the Go toolchain version are written as an
object, matching the "tool" field of "run --json".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := buildinfo.GetInfo()
		if versionJSON {
			return report.WriteJSON(cmd.OutOrStdout(), info)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
		return err
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build info as a JSON object")
	rootCmd.AddCommand(versionCmd)
}
