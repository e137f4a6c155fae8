package tui

import (
	"net/http"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"dpdmap/internal/mapview"
)

// Options configures the UI around an existing map view.
type Options struct {
	View *mapview.View
	// Source is the GeoJSON path or URL loaded at startup.
	Source string
	// Timeout bounds a single dataset load. Zero means no limit beyond the
	// view's lifetime.
	Timeout time.Duration
	Client  *http.Client
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool
	showLegend  bool

	status  string
	loading bool

	view    *mapview.View
	source  string
	timeout time.Duration
	client  *http.Client
	frame   *frameCache

	// Feature browser
	l list.Model

	// where the open popup points
	popupAt orb.Point

	// hover state
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// attributes table
	showAttrs bool
	tbl       table.Model
}

func New(opts Options) Model {
	m := Model{
		helpVisible: true,
		showLegend:  true,
		status:      "loading " + opts.Source,
		loading:     true,
		view:        opts.View,
		source:      opts.Source,
		timeout:     opts.Timeout,
		client:      opts.Client,
		frame:       &frameCache{},
	}
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Small areas"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// attributes table setup (columns are inferred from the dataset)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tilesCmd())
}

func (m Model) buttonLabel() string {
	return m.view.Mode().ToggleLabel()
}
