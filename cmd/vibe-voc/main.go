// Package main provides the vibe-voc command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by bad command-line usage.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// cli holds state shared by all subcommands.
type cli struct {
	cfgFile string
	logger  *zap.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	c := &cli{logger: zap.NewNop()}
	root := c.newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	c.logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", root.CommandPath())
		return ExitUsage
	}
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
	}
	return ExitError
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vibe-voc",
		Short: "Variant-of-concern classifier for Nextclade results",
		Long: `vibe-voc classifies SARS-CoV-2 sequences from a Nextclade results table
against variant-of-concern mutation signatures, scores them by high-risk
substitutions, and summarizes mutation frequencies and spike hotspots.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initConfig(); err != nil {
				return err
			}
			logger, err := newLogger(viper.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			c.logger = logger
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "Config file (default: ~/.vibe-voc.yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.String("region", mutation.SpikeRegion, "Gene prefix for hotspot positions")
	pf.String("signatures", "", "YAML file with VOC signatures and high-risk mutations")
	pf.String("delimiter", "auto", "Input delimiter: auto, ';', ',', or tab")
	pf.StringSlice("high-risk", nil, "Override the high-risk mutation set (comma-separated)")

	viper.BindPFlag("verbose", pf.Lookup("verbose"))
	viper.BindPFlag("region", pf.Lookup("region"))
	viper.BindPFlag("signatures_file", pf.Lookup("signatures"))
	viper.BindPFlag("delimiter", pf.Lookup("delimiter"))
	viper.BindPFlag("high_risk", pf.Lookup("high-risk"))

	root.AddCommand(c.newClassifyCmd())
	root.AddCommand(c.newSummaryCmd())
	root.AddCommand(c.newHotspotsCmd())
	root.AddCommand(c.newFilterCmd())
	root.AddCommand(c.newChartCmd())
	root.AddCommand(c.newSignaturesCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads the config file and environment.
func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		viper.SetConfigFile(c.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".vibe-voc")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBE_VOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if c.cfgFile == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", filepath.Base(viper.ConfigFileUsed()), err)
	}
	return nil
}

// newLogger builds a console logger on stderr. Debug messages are only
// shown when verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
