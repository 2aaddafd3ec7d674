package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"yashubustudio/programmap/programmap"
)

const (
	searchDebounceInterval = 250 * time.Millisecond
	maxSliderK             = 8
)

var projectionChoices = []struct {
	Label string
	Value programmap.ProjectionMethod
}{
	{Label: "Top attributes", Value: programmap.ProjectionAxes},
	{Label: "Principal components", Value: programmap.ProjectionPCA},
}

type tableColumn struct {
	Title  string
	Width  float32
	Render func(tableRow) string
}

type tableRow struct {
	Record  programmap.ProgramRecord
	Cluster int
	Label   string
}

type uiState struct {
	service    *programmap.Service
	logger     *zap.Logger
	cfg        programmap.Config
	configPath string

	w          fyne.Window
	search     *widget.Entry
	kLabel     *widget.Label
	kSlider    *widget.Slider
	seedEntry  *widget.Entry
	projSelect *widget.Select
	resTbl     *widget.Table
	legend     *fyne.Container
	chart      *chartView
	statusBind binding.String

	columns []tableColumn
	rows    []tableRow

	searchMu    sync.Mutex
	searchTimer *time.Timer
	query       string

	runs runTracker
}

func buildUI(a fyne.App, svc *programmap.Service, logger *zap.Logger, logBind binding.String, configPath string) *uiState {
	u := &uiState{service: svc, logger: logger, configPath: configPath}
	u.cfg = svc.Config()
	u.w = a.NewWindow("Program Map")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")

	u.search = widget.NewEntry()
	u.search.SetPlaceHolder("Search focus, strengths, courses or careers")
	u.search.OnChanged = u.onSearchChanged

	u.kLabel = widget.NewLabel(fmt.Sprintf("Clusters: %d", u.cfg.K))
	u.kSlider = widget.NewSlider(1, maxSliderK)
	u.kSlider.Step = 1
	u.kSlider.SetValue(float64(min(u.cfg.K, maxSliderK)))
	u.kSlider.OnChangeEnded = func(v float64) {
		k := int(v)
		u.kLabel.SetText(fmt.Sprintf("Clusters: %d", k))
		u.updateConfig(func(cfg *programmap.Config) { cfg.K = k })
	}

	u.seedEntry = widget.NewEntry()
	u.seedEntry.SetPlaceHolder("random")
	if u.cfg.Seed != nil {
		u.seedEntry.SetText(strconv.FormatInt(*u.cfg.Seed, 10))
	}
	u.seedEntry.OnSubmitted = u.onSeedSubmitted

	labels := make([]string, len(projectionChoices))
	for i, c := range projectionChoices {
		labels[i] = c.Label
	}
	u.projSelect = widget.NewSelect(labels, func(label string) {
		for _, c := range projectionChoices {
			if c.Label == label && c.Value != u.cfg.Projection {
				u.updateConfig(func(cfg *programmap.Config) { cfg.Projection = c.Value })
			}
		}
	})
	for _, c := range projectionChoices {
		if c.Value == u.cfg.Projection {
			u.projSelect.SetSelected(c.Label)
		}
	}

	u.columns = makeColumns()
	u.resTbl = widget.NewTable(
		func() (int, int) { return len(u.rows) + 1, len(u.columns) },
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			lbl.Truncation = fyne.TextTruncateEllipsis
			return lbl
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Row == 0 {
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				lbl.SetText(u.columns[id.Col].Title)
				return
			}
			lbl.TextStyle = fyne.TextStyle{}
			if id.Row-1 >= len(u.rows) {
				lbl.SetText("")
				return
			}
			lbl.SetText(u.columns[id.Col].Render(u.rows[id.Row-1]))
		},
	)
	for i, col := range u.columns {
		u.resTbl.SetColumnWidth(i, col.Width)
	}
	u.resTbl.OnSelected = func(id widget.TableCellID) {
		if id.Row <= 0 || id.Row-1 >= len(u.rows) {
			return
		}
		row := u.rows[id.Row-1]
		dialog.ShowInformation(row.Record.Name, formatRecordDetail(row), u.w)
	}

	u.legend = container.NewVBox()
	u.chart = newChartView()

	logLabel := widget.NewLabelWithData(logBind)
	logLabel.Wrapping = fyne.TextWrapWord
	logScroll := container.NewVScroll(logLabel)
	logScroll.SetMinSize(fyne.NewSize(200, 120))

	openBtn := widget.NewButtonWithIcon("Open catalog", theme.FolderOpenIcon(), u.onOpenCatalog)
	exportBtn := widget.NewButtonWithIcon("Export CSV", theme.DocumentSaveIcon(), u.onExport)

	controls := container.NewVBox(
		widget.NewLabelWithStyle("Search", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.search,
		container.NewGridWithColumns(2, openBtn, exportBtn),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Clustering", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, u.kLabel, nil, u.kSlider),
		container.NewBorder(nil, nil, widget.NewLabel("Seed"), nil, u.seedEntry),
		container.NewBorder(nil, nil, widget.NewLabel("Axes"), nil, u.projSelect),
		widget.NewLabelWithData(u.statusBind),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Clusters", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.legend,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	left := container.NewBorder(controls, nil, nil, nil, logScroll)

	right := container.NewVSplit(u.chart.host, u.resTbl)
	right.Offset = 0.55
	split := container.NewHSplit(left, right)
	split.Offset = 0.3

	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1180, 760))
	return u
}

func makeColumns() []tableColumn {
	return []tableColumn{
		{Title: "Program", Width: 240, Render: func(r tableRow) string { return r.Record.Name }},
		{Title: "Cluster", Width: 180, Render: func(r tableRow) string { return clusterCaption(r.Cluster, r.Label) }},
		{Title: "Focus", Width: 220, Render: func(r tableRow) string { return r.Record.CoreObjective }},
		{Title: "Key strength", Width: 180, Render: func(r tableRow) string { return r.Record.KeyStrength }},
		{Title: "Courses", Width: 260, Render: func(r tableRow) string { return strings.Join(r.Record.SpecializedCourses, ", ") }},
		{Title: "Careers", Width: 260, Render: func(r tableRow) string { return strings.Join(r.Record.CareerOutcomes, ", ") }},
	}
}

func buildRows(res *programmap.Result) []tableRow {
	if res == nil {
		return nil
	}
	rows := make([]tableRow, len(res.Records))
	for i, rec := range res.Records {
		c := res.Clustering.Assignments[i]
		rows[i] = tableRow{Record: rec, Cluster: c, Label: res.ClusterLabel(c)}
	}
	return rows
}

func clusterCaption(id int, label string) string {
	if label == "" {
		return fmt.Sprintf("#%d", id+1)
	}
	return fmt.Sprintf("#%d %s", id+1, label)
}

func formatRecordDetail(row tableRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cluster: %s\n", clusterCaption(row.Cluster, row.Label))
	if row.Record.CoreObjective != "" {
		fmt.Fprintf(&b, "Focus: %s\n", row.Record.CoreObjective)
	}
	if row.Record.KeyStrength != "" {
		fmt.Fprintf(&b, "Key strength: %s\n", row.Record.KeyStrength)
	}
	fmt.Fprintf(&b, "\nCourses:\n")
	for _, c := range row.Record.SpecializedCourses {
		fmt.Fprintf(&b, "  - %s\n", c)
	}
	fmt.Fprintf(&b, "\nCareers:\n")
	for _, o := range row.Record.CareerOutcomes {
		fmt.Fprintf(&b, "  - %s\n", o)
	}
	return b.String()
}

// statusText summarizes a result for the status line.
func statusText(res *programmap.Result) string {
	text := fmt.Sprintf("%d programs, %d clusters, %d attributes, SSE %.2f",
		len(res.Records), res.Clustering.K, len(res.Features.Vocabulary), res.Clustering.SSE)
	if !res.Matched {
		text = "No match, showing all. " + text
	}
	return text
}

func (u *uiState) onSearchChanged(text string) {
	u.searchMu.Lock()
	defer u.searchMu.Unlock()
	u.query = text
	if u.searchTimer != nil {
		u.searchTimer.Stop()
	}
	u.searchTimer = time.AfterFunc(searchDebounceInterval, func() {
		u.recluster(text)
	})
}

func (u *uiState) currentQuery() string {
	u.searchMu.Lock()
	defer u.searchMu.Unlock()
	return u.query
}

func (u *uiState) onSeedSubmitted(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		u.updateConfig(func(cfg *programmap.Config) { cfg.Seed = nil })
		return
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		_ = u.statusBind.Set(fmt.Sprintf("Invalid seed %q", text))
		return
	}
	u.updateConfig(func(cfg *programmap.Config) { cfg.Seed = &v })
}

// updateConfig applies fn, persists the configuration and reclusters.
func (u *uiState) updateConfig(fn func(cfg *programmap.Config)) {
	fn(&u.cfg)
	u.service.UpdateConfig(u.cfg)
	if err := programmap.SaveConfig(u.configPath, u.cfg); err != nil {
		u.logger.Warn("save config failed", zap.Error(err))
	}
	u.recluster(u.currentQuery())
}

// recluster runs off the UI goroutine and swaps the rendered result in. A newer
// call cancels the previous run, whose outcome is then ignored.
func (u *uiState) recluster(query string) {
	ctx, id := u.runs.start(context.Background())
	_ = u.statusBind.Set("Clustering...")
	go func() {
		res, err := u.service.Recluster(ctx, query)
		fyne.Do(func() {
			if !u.runs.finish(id) || isSuperseded(err) {
				return
			}
			if err != nil {
				_ = u.statusBind.Set("Error: " + err.Error())
				return
			}
			u.show(res)
		})
	}()
}

func isSuperseded(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, programmap.ErrSuperseded)
}

func (u *uiState) show(res *programmap.Result) {
	u.rows = buildRows(res)
	u.resTbl.Refresh()
	u.chart.Show(res)
	u.renderLegend(res)
	_ = u.statusBind.Set(statusText(res))
}

func (u *uiState) renderLegend(res *programmap.Result) {
	u.legend.RemoveAll()
	for _, c := range res.Clusters {
		swatch := canvas.NewRectangle(clusterColor(c.ID))
		swatch.SetMinSize(fyne.NewSize(markerSize, markerSize))
		caption := fmt.Sprintf("%s (%d)", clusterCaption(c.ID, c.Label), len(c.Members))
		u.legend.Add(container.NewHBox(container.NewCenter(swatch), widget.NewLabel(caption)))
	}
	u.legend.Refresh()
}

func (u *uiState) onOpenCatalog() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		records, err := programmap.LoadCatalogWithOptions(path, u.cfg.CatalogOptions())
		if err != nil {
			dialog.ShowError(fmt.Errorf("load catalog: %w", err), u.w)
			return
		}
		u.service.ReplaceCatalog(records)
		u.updateConfig(func(cfg *programmap.Config) { cfg.CatalogPath = path })
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json", ".yaml", ".yml", ".csv", ".tsv"}))
	fd.Show()
}

func (u *uiState) onExport() {
	res := u.service.Current()
	if res == nil {
		dialog.ShowInformation("Export", "Nothing to export yet", u.w)
		return
	}
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()
		if err := programmap.WriteResultCSV(uc, res); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.logger.Info("exported clusters", zap.String("path", uc.URI().Path()), zap.Int("programs", len(res.Records)))
	}, u.w)
	fd.SetFileName("clusters.csv")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fd.Show()
}
