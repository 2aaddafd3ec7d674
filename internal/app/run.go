package app

import (
	"fmt"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/data/binding"

	"yashubustudio/programmap/programmap"
)

const (
	fyneAppID    = "yashubustudio.programmap"
	logLineLimit = 300
)

// Run loads configuration and the catalog, then starts the desktop UI.
func Run(configPath string) error {
	cfg, err := programmap.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logBind := binding.NewString()
	capture := newLogCapture(logBind, logLineLimit)
	logger, err := programmap.NewLogger(cfg.Log, capture)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	records, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	svc := programmap.NewService(records, cfg, logger)

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc, logger, logBind, configPath)
	u.recluster("")
	u.w.ShowAndRun()
	u.runs.stop()
	return nil
}

// loadCatalog reads the configured catalog, or the built-in sample when no
// path is set.
func loadCatalog(cfg programmap.Config) ([]programmap.ProgramRecord, error) {
	if cfg.CatalogPath == "" {
		return programmap.DefaultCatalog()
	}
	records, err := programmap.LoadCatalogWithOptions(cfg.CatalogPath, cfg.CatalogOptions())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return records, nil
}
