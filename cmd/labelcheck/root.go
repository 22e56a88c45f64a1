package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/report"
)

type globalOptions struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "labelcheck",
		Short:         "Check alcohol beverage labels against their application form",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			opts.cfg = cfg
			opts.logger = common.NewLogger(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", os.Getenv("LABEL_CONFIG"), "path to YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newCheckCmd(opts),
		newBatchCmd(opts),
		newOCRCmd(opts),
		newRulesCmd(opts),
	)
	return cmd
}

func (o *globalOptions) textOptions(w io.Writer, verbose bool) report.TextOptions {
	return report.TextOptions{Color: !o.noColor && isTerminal(w), Verbose: verbose}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
