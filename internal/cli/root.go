// Package cli implements the shellprobe command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool
)

// rootCmd is the base command for shellprobe.
var rootCmd = &cobra.Command{
	Use:   "shellprobe",
	Short: "Conformance checker for command-line shell implementations",
	Long: `shellprobe runs a shell implementation as a black box, feeds it scripted
input from a test definition file, and checks its output, exit codes, and
timing. The battery covers isolated and single-session runs, the exit builtin,
exit status propagation, and scale tests for long commands, many arguments,
and long pipelines.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
}

// setupGlobals applies the persistent flags and their environment fallbacks.
func setupGlobals(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("verbose") && os.Getenv("SHELLPROBE_VERBOSE") != "" {
		flagVerbose = true
	}
	if !cmd.Flags().Changed("quiet") && os.Getenv("SHELLPROBE_QUIET") != "" {
		flagQuiet = true
	}
	if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("SHELLPROBE_NO_COLOR") != "") {
		flagNoColor = true
	}

	logging.Setup(logging.OptionsFromFormat(flagVerbose, flagQuiet, os.Getenv("SHELLPROBE_LOG_FORMAT")))

	if flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if flagDir != "" {
		if err := os.Chdir(flagDir); err != nil {
			return fmt.Errorf("changing directory to %s: %w", flagDir, err)
		}
	}
	return nil
}

func init() {
	registerPersistentFlags(rootCmd, true)
}

// registerPersistentFlags adds the global flags to cmd. When bind is false
// the flags are unbound, for command trees used only to generate docs.
func registerPersistentFlags(cmd *cobra.Command, bind bool) {
	const (
		verboseUsage = "Enable verbose output: debug logs and diff artifacts (env: SHELLPROBE_VERBOSE)"
		quietUsage   = "Suppress progress output (env: SHELLPROBE_QUIET)"
		configUsage  = "Path to shellprobe.toml config file"
		dirUsage     = "Override working directory"
		colorUsage   = "Disable colored output (env: SHELLPROBE_NO_COLOR, NO_COLOR)"
	)
	pf := cmd.PersistentFlags()
	if bind {
		pf.BoolVarP(&flagVerbose, "verbose", "v", false, verboseUsage)
		pf.BoolVarP(&flagQuiet, "quiet", "q", false, quietUsage)
		pf.StringVar(&flagConfig, "config", "", configUsage)
		pf.StringVar(&flagDir, "dir", "", dirUsage)
		pf.BoolVar(&flagNoColor, "no-color", false, colorUsage)
		return
	}
	pf.BoolP("verbose", "v", false, verboseUsage)
	pf.BoolP("quiet", "q", false, quietUsage)
	pf.String("config", "", configUsage)
	pf.String("dir", "", dirUsage)
	pf.Bool("no-color", false, colorUsage)
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator and man page generator. The
// persistent flags are registered unbound so generators never touch the
// package-level flag state.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	registerPersistentFlags(cmd, false)

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
