package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/report"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
)

var (
	parseFlagJSON       bool
	parseFlagLogic      bool
	parseFlagBackground bool
)

// parseCmd implements "shellprobe parse [file|glob...]".
var parseCmd = &cobra.Command{
	Use:   "parse [file|glob...]",
	Short: "Parse definition files and list their sections and cases",
	Long: `Parse test definition files without running anything. Each section is
listed with its category, whether it would run under the selected features,
and its cases. Syntax errors are reported with file and line.

Without arguments the files from the configuration are parsed.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseFlagJSON, "json", false, "Print the parsed suite as JSON")
	parseCmd.Flags().BoolVar(&parseFlagLogic, "with-logic", false, "Mark logical operator sections as included")
	parseCmd.Flags().BoolVar(&parseFlagBackground, "with-background", false, "Mark background job sections as included")
	rootCmd.AddCommand(parseCmd)
}

// parsedSection is the JSON shape of one listed section.
type parsedSection struct {
	testdef.Section
	Included bool `json:"included"`
}

type parsedSuite struct {
	Files    []string         `json:"files"`
	Digest   string           `json:"digest"`
	Features testdef.Features `json:"features"`
	Cases    int              `json:"cases"`
	Sections []parsedSection  `json:"sections"`
}

func runParse(cmd *cobra.Command, args []string) error {
	patterns := args
	if len(patterns) == 0 {
		resolved, _, err := loadAndResolveConfig(nil)
		if err != nil {
			return err
		}
		patterns = resolved.Config.Tests.Files
	}

	suite, err := testdef.LoadSuite(patterns...)
	if err != nil {
		return err
	}
	features := testdef.Features{Logic: parseFlagLogic, Background: parseFlagBackground}

	ps := parsedSuite{
		Files:    suite.Files,
		Digest:   suite.DigestHex(),
		Features: features,
		Cases:    testdef.CountCases(suite.Sections),
		Sections: make([]parsedSection, 0, len(suite.Sections)),
	}
	for _, s := range suite.Sections {
		ps.Sections = append(ps.Sections, parsedSection{Section: s, Included: s.Category.Enabled(features)})
	}

	if parseFlagJSON {
		return report.WriteJSON(cmd.OutOrStdout(), ps)
	}
	printParsedSuite(cmd, ps)
	return nil
}

func printParsedSuite(cmd *cobra.Command, ps parsedSuite) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d file(s), %d section(s), %d case(s), digest %s\n\n",
		len(ps.Files), len(ps.Sections), ps.Cases, ps.Digest)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, s := range ps.Sections {
		status := styleSuccess.Render("run")
		if !s.Included {
			status = lipgloss.NewStyle().Faint(true).Render("skip (" + s.Category.SkipReason() + ")")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s:%d\n", styleSection.Render(s.Name), s.Category.Kind, status, s.File, s.Line)
		for _, c := range s.Cases {
			fmt.Fprintf(tw, "  %s\t\t\t%s\n", c.Name, c.Location())
		}
	}
	_ = tw.Flush()
}
