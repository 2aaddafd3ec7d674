package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/programmap/programmap"
)

type cliOptions struct {
	configPath  string
	catalogPath string
	verbose     bool

	cfg    programmap.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:          "programmap-cli",
		Short:        "Cluster a program catalog by shared courses and careers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (.json, .yaml or .toml; default config.json)")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "catalog file (.json, .yaml, .csv or .tsv; default built-in sample)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newClusterCmd(opts), newVocabCmd(opts), newSearchCmd(opts))
	return root
}

func (o *cliOptions) init() error {
	cfg, err := programmap.LoadConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.catalogPath != "" {
		cfg.CatalogPath = o.catalogPath
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := programmap.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *cliOptions) loadCatalog() ([]programmap.ProgramRecord, error) {
	if o.cfg.CatalogPath == "" {
		return programmap.DefaultCatalog()
	}
	records, err := programmap.LoadCatalogWithOptions(o.cfg.CatalogPath, o.cfg.CatalogOptions())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	o.logger.Debug("catalog loaded", zap.String("path", o.cfg.CatalogPath), zap.Int("programs", len(records)))
	return records, nil
}
