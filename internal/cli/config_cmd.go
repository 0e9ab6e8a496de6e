package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/config"
)

// configCmd groups the debug and validate subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Inspect, validate, and debug shellprobe configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configDebugCmd implements "shellprobe config debug".
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration with source annotations",
	Long: `Display the fully-resolved configuration showing each value and
the source where it came from (cli flag, environment variable, config file, or default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadAndResolveConfig(nil)
		if err != nil {
			return err
		}
		printResolvedConfig(cmd, resolved)
		return nil
	},
}

// configValidateCmd implements "shellprobe config validate".
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and report issues",
	Long:  "Check the configuration for errors and warnings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadAndResolveConfig(nil)
		if err != nil {
			return err
		}
		result := validateResolved(resolved, meta)
		printValidationResult(cmd, result)
		if result.HasErrors() {
			return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDebugCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

// loadAndResolveConfig loads and resolves the configuration from all sources
// (file, env, CLI flags). It returns the resolved config, the TOML metadata
// (nil when no file was found), and any loading error.
//
// When flagConfig is set, that path is used directly. Otherwise,
// config.FindConfigFile searches upward from the current directory.
func loadAndResolveConfig(overrides *config.CLIOverrides) (*config.ResolvedConfig, *toml.MetaData, error) {
	var (
		fileCfg *config.Config
		meta    *toml.MetaData
	)

	cfgPath := flagConfig
	if cfgPath == "" {
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, nil, fmt.Errorf("finding config file: %w", err)
		}
		cfgPath = found
	}
	if cfgPath != "" {
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		fileCfg = fc
		meta = &md
	}

	resolved := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, overrides)
	resolved.Path = cfgPath
	return resolved, meta, nil
}

// validateResolved validates the merged configuration and folds in the
// environment issues collected during resolution.
func validateResolved(rc *config.ResolvedConfig, meta *toml.MetaData) *config.ValidationResult {
	result := config.Validate(rc.Config, meta)
	result.Issues = append(result.Issues, rc.EnvIssues...)
	return result
}

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Underline(true)
	styleSection = lipgloss.NewStyle().Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleIssue   = map[config.ValidationSeverity]lipgloss.Style{
		config.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		config.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	}
	sourceColors = map[config.ConfigSource]lipgloss.Color{
		config.SourceDefault: "10",
		config.SourceFile:    "12",
		config.SourceEnv:     "11",
		config.SourceCLI:     "9",
	}
)

// configRow is one line of "config debug" output. Key is the dotted path
// used in ResolvedConfig.Sources.
type configRow struct {
	Key   string
	Value any
}

// configRows flattens cfg in file order. Strings and slices are quoted so
// empty values stay visible.
func configRows(c *config.Config) []configRow {
	return []configRow{
		{"subject.executable", c.Subject.Executable},
		{"subject.env", c.Subject.Env},
		{"tests.files", c.Tests.Files},
		{"tests.etalon", c.Tests.Etalon},
		{"tests.scenarios", c.Tests.Scenarios},
		{"features.logic", c.Features.Logic},
		{"features.background", c.Features.Background},
		{"limits.long_command_length", c.Limits.LongCommandLength},
		{"limits.many_args_count", c.Limits.ManyArgsCount},
		{"limits.long_pipe_length", c.Limits.LongPipeLength},
		{"timeouts.case", c.Timeouts.Case.String()},
		{"timeouts.exit", c.Timeouts.Exit.String()},
		{"timeouts.scale", c.Timeouts.Scale.String()},
		{"workspace.scratch_dir", c.Workspace.ScratchDir},
		{"workspace.artifacts_dir", c.Workspace.ArtifactsDir},
		{"workspace.keep_scratch", c.Workspace.KeepScratch},
		{"workspace.diff_width", c.Workspace.DiffWidth},
		{"scoring.base", c.Scoring.Base},
		{"scoring.bonus", c.Scoring.Bonus},
	}
}

func displayValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func printTitle(out io.Writer, title string) {
	fmt.Fprintf(out, "%s\n%s\n\n", styleTitle.Render(title), strings.Repeat("=", len(title)))
}

// printResolvedConfig writes every resolved value with the layer it came from.
func printResolvedConfig(cmd *cobra.Command, rc *config.ResolvedConfig) {
	out := cmd.OutOrStdout()
	printTitle(out, "Configuration Debug")

	path := rc.Path
	if path == "" {
		path = "none found"
	}
	fmt.Fprintf(out, "Config file: %s\n", path)

	section := ""
	for _, row := range configRows(rc.Config) {
		table, name, _ := strings.Cut(row.Key, ".")
		if table != section {
			section = table
			fmt.Fprintf(out, "\n%s\n", styleSection.Render("["+table+"]"))
		}
		src := rc.Sources[row.Key]
		label := lipgloss.NewStyle().Foreground(sourceColors[src]).Render("(source: " + string(src) + ")")
		fmt.Fprintf(out, "  %-24s = %-40s %s\n", name, displayValue(row.Value), label)
	}
}

// printValidationResult lists errors before warnings, then a one-line tally.
func printValidationResult(cmd *cobra.Command, result *config.ValidationResult) {
	out := cmd.OutOrStdout()
	printTitle(out, "Configuration Validation")

	groups := []struct {
		label  string
		sev    config.ValidationSeverity
		issues []config.ValidationIssue
	}{
		{"Errors:", config.SeverityError, result.Errors()},
		{"Warnings:", config.SeverityWarning, result.Warnings()},
	}
	if len(groups[0].issues)+len(groups[1].issues) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}
	for _, g := range groups {
		if len(g.issues) == 0 {
			continue
		}
		fmt.Fprintln(out, styleIssue[g.sev].Render(g.label))
		for _, issue := range g.issues {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(groups[0].issues), len(groups[1].issues))
}
