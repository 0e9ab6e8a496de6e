package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/config"
)

// ErrInitCancelled is returned when the user aborts the init form.
var ErrInitCancelled = errors.New("init cancelled by user")

var (
	initFlagForce bool
	initFlagYes   bool
)

// initCmd implements "shellprobe init [template]".
var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "Write a starter shellprobe.toml and test definition file",
	Long: `Render an embedded template into the current directory. On a terminal
a short form asks for the shell executable, definition files, and bonus
features; --yes accepts the defaults without asking. Existing files are
preserved unless --force is supplied.

Examples:
  shellprobe init                 # default template, interactive
  shellprobe init minimal --yes   # config file only, no questions
  shellprobe init --force         # overwrite existing files`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{config.DefaultTemplate, "minimal"},
	RunE:      runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlagForce, "force", false, "Overwrite existing files")
	initCmd.Flags().BoolVarP(&initFlagYes, "yes", "y", false, "Accept defaults without prompting")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name := config.DefaultTemplate
	if len(args) > 0 {
		name = args[0]
	}
	if !config.TemplateExists(name) {
		available, _ := config.ListTemplates()
		return fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(available, ", "))
	}

	vars := config.DefaultTemplateVars()
	if !initFlagYes && isStdinTTY() {
		if err := runInitForm(&vars); err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	log.Debug("rendering template", "template", name, "dest", cwd, "force", initFlagForce)
	res, err := config.RenderTemplate(name, cwd, vars, initFlagForce)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range res.Created {
		fmt.Fprintf(out, "created %s\n", p)
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(out, "skipped %s (exists, use --force to overwrite)\n", p)
	}
	if len(res.Created) > 0 {
		fmt.Fprintln(out, "\nNext: shellprobe config validate && shellprobe run")
	}
	return nil
}

// runInitForm asks for the template variables, editing vars in place.
func runInitForm(vars *config.TemplateVars) error {
	files := strings.Join(vars.TestFiles, ", ")
	manyArgs := strconv.Itoa(vars.ManyArgsCount)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Shell executable").
				Description("Path to the shell under test").
				Value(&vars.Executable).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("executable must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Test definition files").
				Description("Comma-separated paths or globs").
				Value(&files),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Check logical operators (&&, ||)?").
				Value(&vars.Logic),
			huh.NewConfirm().
				Title("Check background jobs (&)?").
				Value(&vars.Background),
			huh.NewInput().
				Title("Arguments in the many-arguments test").
				Value(&manyArgs).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return errors.New("must be a positive integer")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCharm()).WithWidth(80)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrInitCancelled
		}
		return fmt.Errorf("running init form: %w", err)
	}

	vars.Executable = strings.TrimSpace(vars.Executable)
	vars.TestFiles = splitFiles(files)
	if len(vars.TestFiles) == 0 {
		vars.TestFiles = config.DefaultTemplateVars().TestFiles
	}
	// Validated above.
	vars.ManyArgsCount, _ = strconv.Atoi(strings.TrimSpace(manyArgs))
	return nil
}

func splitFiles(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isStdinTTY reports whether stdin is an interactive terminal.
func isStdinTTY() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
