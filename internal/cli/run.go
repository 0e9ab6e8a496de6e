package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/config"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/logging"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/report"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/scenario"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
)

// runFlags holds the flag values of "shellprobe run".
type runFlags struct {
	Executable    string
	Tests         []string
	Etalon        string
	Scenarios     []string
	Logic         bool
	Background    bool
	ManyArgsCount int
	ScratchDir    string
	ArtifactsDir  string
	KeepScratch   bool
	JSON          bool
}

var runOpts runFlags

// runCmd implements "shellprobe run".
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the conformance battery against a shell",
	Long: `Run the scenario battery against the shell executable. Test cases come
from one or more definition files; sections for logical operators and
background jobs run only when their feature is enabled.

The first failing scenario stops the run. With --verbose a side-by-side diff
is printed and the expected and actual outputs are written to
output_expected.txt and output_got.txt in the artifacts directory.

Examples:
  shellprobe run                                  # ./a.out against ./tests.txt
  shellprobe run -e ./minishell --with-logic      # include the logic bonus
  shellprobe run --tests 'tests/**/*.txt' --json  # machine-readable result
  shellprobe run --scenario one-by-one --scenario exit-codes`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runOpts.Executable, "exe", "e", "", "Shell executable to test (env: SHELLPROBE_EXE)")
	f.StringArrayVarP(&runOpts.Tests, "tests", "t", nil, "Definition file or glob, repeatable (env: SHELLPROBE_TESTS)")
	f.StringVar(&runOpts.Etalon, "etalon", "", "Golden transcript of the whole suite (env: SHELLPROBE_ETALON)")
	f.StringArrayVar(&runOpts.Scenarios, "scenario", nil, "Run only this scenario, repeatable")
	f.BoolVar(&runOpts.Logic, "with-logic", false, "Check logical operator sections (env: SHELLPROBE_WITH_LOGIC)")
	f.BoolVar(&runOpts.Background, "with-background", false, "Check background job sections (env: SHELLPROBE_WITH_BACKGROUND)")
	f.IntVar(&runOpts.ManyArgsCount, "many-args-count", 0, "Arguments in the many-arguments test (env: SHELLPROBE_MANY_ARGS_COUNT)")
	f.StringVar(&runOpts.ScratchDir, "scratch-dir", "", "Working directory of the shell (env: SHELLPROBE_SCRATCH_DIR)")
	f.StringVar(&runOpts.ArtifactsDir, "artifacts-dir", "", "Directory for diff artifacts")
	f.BoolVar(&runOpts.KeepScratch, "keep-scratch", false, "Keep the scratch directory after a passing run")
	f.BoolVar(&runOpts.JSON, "json", false, "Print the result as JSON on stdout; progress goes to stderr")

	_ = runCmd.RegisterFlagCompletionFunc("scenario", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return scenario.IDs(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(runCmd)
}

// runOverrides turns the flags the user actually set into CLI overrides.
func runOverrides(cmd *cobra.Command) *config.CLIOverrides {
	o := &config.CLIOverrides{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "exe":
			o.Executable = &runOpts.Executable
		case "tests":
			o.Tests = runOpts.Tests
		case "etalon":
			o.Etalon = &runOpts.Etalon
		case "scenario":
			o.Scenarios = runOpts.Scenarios
		case "with-logic":
			o.Logic = &runOpts.Logic
		case "with-background":
			o.Background = &runOpts.Background
		case "many-args-count":
			o.ManyArgsCount = &runOpts.ManyArgsCount
		case "scratch-dir":
			o.ScratchDir = &runOpts.ScratchDir
		case "artifacts-dir":
			o.ArtifactsDir = &runOpts.ArtifactsDir
		case "keep-scratch":
			o.KeepScratch = &runOpts.KeepScratch
		}
	})
	return o
}

func runRun(cmd *cobra.Command, _ []string) error {
	logger := logging.New("run")

	resolved, meta, err := loadAndResolveConfig(runOverrides(cmd))
	if err != nil {
		return err
	}
	vr := validateResolved(resolved, meta)
	for _, w := range vr.Warnings() {
		logger.Warn(w.Message, "field", w.Field)
	}
	if vr.HasErrors() {
		printValidationResult(cmd, vr)
		return fmt.Errorf("configuration has %d error(s)", len(vr.Errors()))
	}
	cfg := resolved.Config

	suite, err := testdef.LoadSuite(cfg.Tests.Files...)
	if err != nil {
		return err
	}
	logger.Debug("loaded definitions", "files", len(suite.Files), "sections", len(suite.Sections), "digest", suite.DigestHex())

	etalon, err := loadEtalon(cfg.Tests.Etalon)
	if err != nil {
		return err
	}

	scratch, err := harness.NewScratchDir(cfg.Workspace.ScratchDir)
	if err != nil {
		return err
	}
	launcher, err := harness.NewLauncher(cfg.Subject.Executable, scratch.Path(), logging.New("harness"))
	if err != nil {
		return err
	}
	if len(cfg.Subject.Env) > 0 {
		launcher.Env = append(os.Environ(), cfg.Subject.Env...)
	}
	if err := launcher.Check(); err != nil {
		return err
	}

	env := &scenario.Env{
		Spawner:  launcher,
		Scratch:  scratch,
		Features: testdef.Features{Logic: cfg.Features.Logic, Background: cfg.Features.Background},
		Etalon:   etalon,
		Options:  scenarioOptions(cfg),
		Logger:   logging.New("scenario"),
	}
	env.Artifacts.Dir = cfg.Workspace.ArtifactsDir

	progressOut := cmd.OutOrStdout()
	if runOpts.JSON {
		progressOut = cmd.ErrOrStderr()
	}
	printer := report.NewPrinter(progressOut, report.Options{
		Quiet:     flagQuiet,
		DiffWidth: cfg.Workspace.DiffWidth,
	})

	driver, err := scenario.NewDriver(env, suite.Sections, nil, printer)
	if err != nil {
		return err
	}
	driver.KeepScratch = cfg.Workspace.KeepScratch
	printer.SetPlanned(len(driver.Planned()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, runErr := driver.Run(ctx)
	printer.Finish(sum)

	if runOpts.JSON {
		result := report.NewResult(launcher.Executable, suite, sum, runErr)
		if err := report.WriteJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return errors.New("run interrupted")
	}
	return runErr
}

// loadEtalon reads the golden transcript. A missing file disables the
// etalon scenario; validation has already warned about it.
func loadEtalon(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	lines, err := scenario.ReadEtalon(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return lines, err
}

func scenarioOptions(cfg *config.Config) scenario.Options {
	opts := scenario.DefaultOptions()
	opts.CaseTimeout = cfg.Timeouts.Case.Duration
	opts.ExitTimeout = cfg.Timeouts.Exit.Duration
	opts.ScaleTimeout = cfg.Timeouts.Scale.Duration
	opts.LongCommandLength = cfg.Limits.LongCommandLength
	opts.ManyArgsCount = cfg.Limits.ManyArgsCount
	opts.LongPipeLength = cfg.Limits.LongPipeLength
	opts.BasePoints = cfg.Scoring.Base
	opts.BonusPoints = cfg.Scoring.Bonus
	opts.DiffWidth = cfg.Workspace.DiffWidth
	opts.Diagnostics = flagVerbose
	opts.Only = cfg.Tests.Scenarios
	return opts
}
