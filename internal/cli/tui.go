package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/chart"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/export"
	"github.com/matzehuels/tabpanel/pkg/render/sink"
	"github.com/matzehuels/tabpanel/pkg/session"
	"github.com/matzehuels/tabpanel/pkg/view"
)

// Tab bar styles
var (
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorCyan).Padding(0, 1)
	tabNormalStyle = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	panelStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(colorCyan).Padding(1, 1)
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// chartBarWidth is the width of the largest slice's bar, in cells.
const chartBarWidth = 30

// =============================================================================
// PanelModel - Interactive tab panel
// =============================================================================

type exportDoneMsg struct {
	path string
	err  error
}

// PanelModel is the bubbletea model for the terminal tab panel.
type PanelModel struct {
	ctx      context.Context
	view     *view.View
	chartCfg chart.Config
	bodies   []string
	dst      export.FileDownloader
	state    *session.FileStore
	logger   *log.Logger

	Width     int
	Status    string
	StatusErr bool
	Exporting bool
	Exported  string
}

// NewPanelModel creates a panel over v. Exports are written by dst; the
// selected tab is saved to state on quit when state is non-nil.
func NewPanelModel(ctx context.Context, v *view.View, chartCfg chart.Config, dst export.FileDownloader, state *session.FileStore, logger *log.Logger) PanelModel {
	md := sink.NewMarkdownRenderer()
	bodies := make([]string, len(v.Tabs()))
	for i, t := range v.Tabs() {
		if i == v.ChartIndex() {
			continue
		}
		text, err := md.Convert(t.HTML)
		if err != nil {
			logger.Debug("convert tab", "tab", t.ID, "err", err)
			text = t.HTML
		}
		bodies[i] = strings.TrimSpace(text)
	}
	return PanelModel{
		ctx:      ctx,
		view:     v,
		chartCfg: chartCfg,
		bodies:   bodies,
		dst:      dst,
		state:    state,
		logger:   logger,
		Width:    80,
	}
}

func (m PanelModel) Init() tea.Cmd {
	return nil
}

func (m PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.view.Tabs())
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			m.saveState()
			return m, tea.Quit
		case "right", "l", "tab":
			m.selectTab((m.view.Selected() + 1) % n)
		case "left", "h", "shift+tab":
			m.selectTab((m.view.Selected() - 1 + n) % n)
		case "e":
			if m.Exporting {
				return m, nil
			}
			m.Exporting = true
			m.Status, m.StatusErr = "Exporting...", false
			return m, m.exportCmd()
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				m.selectTab(int(key[0] - '1'))
			}
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	case exportDoneMsg:
		m.Exporting = false
		if msg.err != nil {
			m.Status, m.StatusErr = "Export failed: "+errors.UserMessage(msg.err), true
			return m, nil
		}
		m.Exported = msg.path
		m.Status, m.StatusErr = "Exported "+msg.path, false
	}
	return m, nil
}

func (m *PanelModel) selectTab(i int) {
	if err := m.view.SetIndex(i); err != nil {
		m.Status, m.StatusErr = errors.UserMessage(err), true
		return
	}
	m.Status, m.StatusErr = "", false
}

func (m PanelModel) exportCmd() tea.Cmd {
	ctx, v, dst := m.ctx, m.view, m.dst
	return func() tea.Msg {
		var path string
		err := v.Download(ctx, export.DownloaderFunc(func(ctx context.Context, doc *export.Document) error {
			path = dst.Path(doc)
			return dst.Download(ctx, doc)
		}))
		return exportDoneMsg{path: path, err: err}
	}
}

func (m PanelModel) saveState() {
	if m.state == nil {
		return
	}
	id := m.view.Tabs()[m.view.Selected()].ID
	if err := m.state.Save(&session.State{TabID: id}); err != nil {
		m.logger.Debug("save panel state", "err", err)
	}
}

func (m PanelModel) View() string {
	var b strings.Builder
	selected := m.view.Selected()

	var labels []string
	for i, t := range m.view.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, t.Title)
		if i == selected {
			labels = append(labels, tabActiveStyle.Render(label))
		} else {
			labels = append(labels, tabNormalStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labels...))
	b.WriteString("\n")

	body := m.bodies[selected]
	if selected == m.view.ChartIndex() {
		body = m.chartBody()
	}
	b.WriteString(panelStyle.Width(max(m.Width-2, 20)).Render(body))
	b.WriteString("\n")

	b.WriteString(listDimStyle.Render("←/→ switch  1-9 jump  e export  q quit"))
	if m.Status != "" {
		b.WriteString("\n")
		if m.StatusErr {
			b.WriteString(styleIconError.Render(iconError) + " " + m.Status)
		} else {
			b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.Status)
		}
	}
	return b.String()
}

// chartBody draws the pie data as horizontal bars.
func (m PanelModel) chartBody() string {
	cfg := m.chartCfg
	var total, largest float64
	for _, v := range cfg.Values {
		total += v
		largest = max(largest, v)
	}

	labelW := 0
	for _, l := range cfg.Labels {
		labelW = max(labelW, lipgloss.Width(l))
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Simple Pie Chart"))
	b.WriteString("\n\n")
	for i, v := range cfg.Values {
		cells := 0
		if largest > 0 {
			cells = int(v / largest * chartBarWidth)
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Colors[i%len(cfg.Colors)])).Render(strings.Repeat("█", max(cells, 1)))
		fmt.Fprintf(&b, "%-*s %s %s %s\n", labelW, cfg.Labels[i], bar,
			StyleNumber.Render(fmt.Sprintf("%g", v)),
			StyleDim.Render(fmt.Sprintf("(%.1f%%)", v/total*100)))
	}
	if m.view.Snapshot() != "" {
		b.WriteString("\n" + StyleSuccess.Render("snapshot ready"))
	} else {
		b.WriteString("\n" + StyleDim.Render("rendering..."))
	}
	return b.String()
}
