package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Casey2134/pulse/internal/domain"
)

// --- Panels ---

type Panel int

const (
	PanelNodes Panel = iota
	PanelWorkloads
)

func (p Panel) String() string {
	switch p {
	case PanelNodes:
		return "NODES"
	case PanelWorkloads:
		return "WORKLOADS"
	default:
		return ""
	}
}

// --- Model ---

type Model struct {
	providers []domain.Provider
	interval  time.Duration
	logger    *slog.Logger

	// Data
	nodes     []domain.Node
	workloads []domain.Workload

	// UI state
	activePanel   Panel
	nodeIndex     int
	workloadIndex int
	width         int
	height        int
	showHelp      bool

	// Sort
	sortField     SortField
	sortAscending bool

	// Search
	search    textinput.Model
	searching bool

	// Refresh state
	refreshing  bool
	lastRefresh time.Time
	errMsg      string
}

func NewModel(providers []domain.Provider, interval time.Duration, logger *slog.Logger) Model {
	si := textinput.New()
	si.Placeholder = "name..."
	si.CharLimit = 64
	si.Width = 30

	return Model{
		providers:     providers,
		interval:      interval,
		logger:        logger,
		sortField:     SortName,
		sortAscending: true,
		search:        si,
		refreshing:    true, // Init fires the first poll
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		refreshCmd(m.providers),
		scheduleTick(m.interval),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{scheduleTick(m.interval)}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, refreshCmd(m.providers))
		}
		return m, tea.Batch(cmds...)

	case refreshMsg:
		m.refreshing = false
		m.applyRefresh(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The help overlay consumes whatever key dismisses it, even a
	// quit key.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Panel):
		if m.activePanel == PanelNodes {
			m.activePanel = PanelWorkloads
		} else {
			m.activePanel = PanelNodes
		}

	case key.Matches(msg, keys.Down):
		m.moveSelection(1)

	case key.Matches(msg, keys.Up):
		m.moveSelection(-1)

	case key.Matches(msg, keys.Refresh):
		if !m.refreshing {
			m.refreshing = true
			return m, refreshCmd(m.providers)
		}

	case key.Matches(msg, keys.Sort):
		m.sortField = m.sortField.Next()
		m.applySort()

	case key.Matches(msg, keys.Order):
		m.sortAscending = !m.sortAscending
		m.applySort()

	case key.Matches(msg, keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Clear):
		if m.search.Value() != "" {
			m.clearSearch()
		}

	case key.Matches(msg, keys.Help):
		m.showHelp = true
	}

	return m, nil
}

// handleSearchKey routes keys while the search input is focused. Only
// editing and mode exits are recognized; navigation keys fall through
// to the input as text.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.clearSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Any edit restarts both selections from the top.
	m.nodeIndex = 0
	m.workloadIndex = 0
	return m, cmd
}

// --- Filtering ---

func (m Model) query() string {
	return strings.ToLower(strings.TrimSpace(m.search.Value()))
}

// filteredNodes returns nodes whose name contains the query,
// case-insensitively. An empty query passes everything through.
func (m Model) filteredNodes() []domain.Node {
	q := m.query()
	if q == "" {
		return m.nodes
	}
	var out []domain.Node
	for _, n := range m.nodes {
		if strings.Contains(strings.ToLower(n.Name), q) {
			out = append(out, n)
		}
	}
	return out
}

// filteredWorkloads matches the query against a workload's own name or
// the name of the node hosting it.
func (m Model) filteredWorkloads() []domain.Workload {
	q := m.query()
	if q == "" {
		return m.workloads
	}
	var out []domain.Workload
	for _, w := range m.workloads {
		if strings.Contains(strings.ToLower(w.Name), q) ||
			strings.Contains(strings.ToLower(w.Node), q) {
			out = append(out, w)
		}
	}
	return out
}

// --- Selection ---

func (m *Model) moveSelection(delta int) {
	switch m.activePanel {
	case PanelNodes:
		m.nodeIndex = clamp(m.nodeIndex+delta, len(m.filteredNodes()))
	case PanelWorkloads:
		m.workloadIndex = clamp(m.workloadIndex+delta, len(m.filteredWorkloads()))
	}
}

// clampSelection pulls both indices back into range after the
// underlying collections change size.
func (m *Model) clampSelection() {
	m.nodeIndex = clamp(m.nodeIndex, len(m.filteredNodes()))
	m.workloadIndex = clamp(m.workloadIndex, len(m.filteredWorkloads()))
}

func clamp(i, length int) int {
	if i >= length {
		i = length - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m *Model) clearSearch() {
	m.search.SetValue("")
	m.nodeIndex = 0
	m.workloadIndex = 0
}

func (m *Model) applySort() {
	SortNodes(m.nodes, m.sortField, m.sortAscending)
	SortWorkloads(m.workloads, m.sortField, m.sortAscending)
}

// selectedNode returns the node under the cursor in the filtered view.
func (m Model) selectedNode() (domain.Node, bool) {
	nodes := m.filteredNodes()
	if len(nodes) == 0 || m.nodeIndex >= len(nodes) {
		return domain.Node{}, false
	}
	return nodes[m.nodeIndex], true
}

func (m Model) selectedWorkload() (domain.Workload, bool) {
	workloads := m.filteredWorkloads()
	if len(workloads) == 0 || m.workloadIndex >= len(workloads) {
		return domain.Workload{}, false
	}
	return workloads[m.workloadIndex], true
}

// --- Summaries ---

func (m Model) nodeSummary() (online, total int) {
	for _, n := range m.nodes {
		if n.Status == domain.NodeOnline {
			online++
		}
	}
	return online, len(m.nodes)
}

func (m Model) workloadSummary() (running, total int) {
	for _, w := range m.workloads {
		if w.Status == domain.WorkloadRunning {
			running++
		}
	}
	return running, len(m.workloads)
}

func (m Model) timeSinceRefresh() string {
	if m.lastRefresh.IsZero() {
		return "never"
	}
	d := time.Since(m.lastRefresh)
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}
