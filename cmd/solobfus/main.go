package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/goudunz1/solobfus/internal/compiler"
	"github.com/goudunz1/solobfus/internal/config"
	"github.com/goudunz1/solobfus/internal/passctx"
	"github.com/goudunz1/solobfus/internal/passes"
	"github.com/goudunz1/solobfus/internal/sourcegen"
	"github.com/goudunz1/solobfus/internal/version"
)

// ObfuscateCommand wraps the root command's flags, mirroring the
// teacher's Command-struct + CreateCobraCommand() idiom
// (cmd/pyscn/analyze.go's AnalyzeCommand).
type ObfuscateCommand struct {
	output         string
	jobs           []string
	verbose        bool
	showVersion    bool
	solcPath       string
	seed           int64
	hasSeed        bool
	junkStatements int
}

// NewObfuscateCommand creates a new obfuscate command with its defaults
// unset; CreateCobraCommand wires its flags.
func NewObfuscateCommand() *ObfuscateCommand {
	return &ObfuscateCommand{}
}

// CreateCobraCommand builds the root cobra command (spec.md §6).
func (c *ObfuscateCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solobfus <file>",
		Short: "A Solidity source-to-source obfuscator",
		Long: `solobfus rewrites a Solidity source file through a pipeline of
source-to-source obfuscation passes: control-flow flattening, opaque
constants, opaque predicates, data-flow obfuscation, and identifier
renaming.`,
		Version: version.Short(),
		Args:    cobra.ExactArgs(1),
		RunE:    c.runObfuscate,
	}

	cmd.Flags().StringVarP(&c.output, "output", "o", "", "output file path (default: input path with .out.sol extension)")
	cmd.Flags().StringArrayVarP(&c.jobs, "jobs", "j", nil, "obfuscation pass to run, in order (repeatable): cff, oconst, opredic, dfo, rename")
	cmd.Flags().BoolVarP(&c.verbose, "verbose", "V", false, "enable verbose logging and indented source output")
	cmd.Flags().BoolVarP(&c.showVersion, "version", "v", false, "print version information and exit")
	cmd.Flags().StringVar(&c.solcPath, "solc", "", "path to the solc binary (default: solc on PATH)")
	cmd.Flags().Int64Var(&c.seed, "seed", 0, "deterministic PRNG seed (default: system entropy)")
	cmd.Flags().IntVar(&c.junkStatements, "junk-statements", 0, "number of junk statements per opaque-predicate dead branch (default: 4)")

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	return cmd
}

// explicitlySet returns the set of flags the caller passed on the
// command line, for config.Merge's override gate.
func explicitlySet(cmd *cobra.Command) map[string]bool {
	set := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		set[f.Name] = true
	})
	return set
}

func (c *ObfuscateCommand) runObfuscate(cmd *cobra.Command, args []string) error {
	if c.showVersion {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.Info())
		return nil
	}

	inputPath := args[0]

	fileCfg, err := config.Load("")
	if err != nil {
		return err
	}

	override := &config.Config{
		Jobs:           c.jobs,
		Output:         c.output,
		Verbose:        c.verbose,
		SolcPath:       c.solcPath,
		JunkStatements: c.junkStatements,
	}
	if c.hasSeed {
		override.Seed = &c.seed
	}
	cfg := config.Merge(fileCfg, override, explicitlySet(cmd))

	if err := config.ValidateJobs(cfg.Jobs); err != nil {
		return err
	}

	ctx := context.Background()

	if semver, warn, err := compiler.CheckVersion(ctx, cfg.SolcPath); err != nil {
		log.Printf("solobfus: warning: could not determine solc version: %v", err)
	} else if warn {
		log.Printf("solobfus: warning: solc %s is older than the minimum supported version %s", semver, compiler.MinimumVersion)
	}

	doc, err := compiler.Compile(ctx, inputPath, compiler.Options{SolcPath: cfg.SolcPath})
	if err != nil {
		return err
	}
	if len(doc.Order) == 0 {
		return fmt.Errorf("solobfus: compiler produced no source units for %s", inputPath)
	}
	root := doc.Sources[doc.Order[0]]

	bar := c.progressBar(cmd, len(cfg.Jobs))
	passCtx := passctx.New(cfg.Seed, cfg.JunkStatements)
	for _, name := range cfg.Jobs {
		pass, ok := passes.Lookup(name)
		if !ok {
			return fmt.Errorf("passes: unknown pass %q", name)
		}
		root, err = pass(root, passCtx)
		if err != nil {
			return fmt.Errorf("passes: %s: %w", name, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	output := sourcegen.Build(root, cfg.Verbose, 4)

	outputPath := cfg.OutputPath(inputPath)
	if err := os.WriteFile(outputPath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	if cfg.Verbose {
		log.Printf("solobfus: wrote %s", outputPath)
	}
	return nil
}

// progressBar creates a TTY-gated progress bar tracking one tick per
// pass, grounded on cmd/pyscn/analyze.go's shouldUseProgressBars +
// createProgressBar pattern.
func (c *ObfuscateCommand) progressBar(cmd *cobra.Command, total int) *progressbar.ProgressBar {
	writer := io.Discard
	if c.shouldUseProgressBars(cmd) {
		writer = cmd.ErrOrStderr()
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("obfuscating"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
}

// shouldUseProgressBars reports whether stderr looks like an
// interactive terminal, so piped/CI output stays clean.
func (c *ObfuscateCommand) shouldUseProgressBars(cmd *cobra.Command) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	if errWriter, ok := cmd.ErrOrStderr().(*os.File); ok {
		return term.IsTerminal(int(errWriter.Fd()))
	}
	return false
}

// NewObfuscateCmd creates and returns the root cobra command.
func NewObfuscateCmd() *cobra.Command {
	oc := NewObfuscateCommand()
	cmd := oc.CreateCobraCommand()
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		oc.hasSeed = cmd.Flags().Changed("seed")
	}
	return cmd
}

var rootCmd = NewObfuscateCmd()

func init() {
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("solobfus: %v", err)
		os.Exit(1)
	}
}
