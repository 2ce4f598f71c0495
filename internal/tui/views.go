package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Casey2134/pulse/internal/domain"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.renderHelp())
	} else {
		b.WriteString(m.renderPanels())
		b.WriteString("\n")
		b.WriteString(m.renderDetail())
	}

	if m.searching || m.search.Value() != "" {
		b.WriteString(fmt.Sprintf("  /%s\n", m.search.View()))
	}

	// Fill remaining space so the status bar sits at the bottom.
	lines := strings.Count(b.String(), "\n")
	for i := lines; i < m.height-2; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())

	return b.String()
}

func (m Model) renderHeader() string {
	online, totalNodes := m.nodeSummary()
	running, totalWorkloads := m.workloadSummary()

	var refreshing string
	if m.refreshing {
		refreshing = "  refreshing..."
	}

	return fmt.Sprintf(" %s  %s  %s  %s%s",
		titleStyle.Render("PULSE"),
		mutedStyle.Render(fmt.Sprintf("nodes %d/%d", online, totalNodes)),
		mutedStyle.Render(fmt.Sprintf("workloads %d/%d", running, totalWorkloads)),
		mutedStyle.Render("sort: "+SortIndicator(m.sortField, m.sortAscending)),
		mutedStyle.Render(refreshing),
	)
}

func (m Model) renderPanels() string {
	// Nodes take roughly a third; guests get the rest.
	nodeWidth := m.width * 35 / 100
	workloadWidth := m.width - nodeWidth - 6
	if nodeWidth < 30 {
		nodeWidth = 30
	}

	maxVisible := m.height - 14
	if maxVisible < 3 {
		maxVisible = 3
	}

	nodePanel := m.panelStyle(PanelNodes).Width(nodeWidth).Render(
		m.renderNodeList(nodeWidth, maxVisible))
	workloadPanel := m.panelStyle(PanelWorkloads).Width(workloadWidth).Render(
		m.renderWorkloadList(workloadWidth, maxVisible))

	return lipgloss.JoinHorizontal(lipgloss.Top, nodePanel, workloadPanel)
}

func (m Model) panelStyle(p Panel) lipgloss.Style {
	if m.activePanel == p {
		return panelActiveStyle
	}
	return panelInactiveStyle
}

func (m Model) renderNodeList(width, maxVisible int) string {
	nodes := m.filteredNodes()

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Nodes (%d)", len(nodes))))
	b.WriteString("\n")

	if len(nodes) == 0 {
		b.WriteString(mutedStyle.Render("  no nodes"))
		b.WriteString("\n")
		return b.String()
	}

	start := scrollStart(m.nodeIndex, maxVisible)
	for i := start; i < len(nodes) && i < start+maxVisible; i++ {
		n := nodes[i]
		line := fmt.Sprintf(" %s %-*s %4.0f%% %s",
			statusDot(n.Status == domain.NodeOnline),
			width-22, truncate(n.Name, width-23),
			n.CPUUsage,
			miniBar(n.MemoryPercent(), 8))

		if i == m.nodeIndex && m.activePanel == PanelNodes {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderWorkloadList(width, maxVisible int) string {
	workloads := m.filteredWorkloads()

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Workloads (%d)", len(workloads))))
	b.WriteString("\n")

	if len(workloads) == 0 {
		b.WriteString(mutedStyle.Render("  no workloads"))
		b.WriteString("\n")
		return b.String()
	}

	nameWidth := width - 40
	if nameWidth < 12 {
		nameWidth = 12
	}

	start := scrollStart(m.workloadIndex, maxVisible)
	for i := start; i < len(workloads) && i < start+maxVisible; i++ {
		w := workloads[i]
		line := fmt.Sprintf(" %s %-3s %-*s %-12s %5.1f%% %9s",
			statusDot(w.Status == domain.WorkloadRunning),
			w.Kind.Label(),
			nameWidth, truncate(w.Name, nameWidth-1),
			truncate(w.Node, 12),
			w.CPUUsage,
			domain.FormatBytes(w.MemoryUsed))

		if i == m.workloadIndex && m.activePanel == PanelWorkloads {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail shows the selected entity of the active panel.
func (m Model) renderDetail() string {
	switch m.activePanel {
	case PanelWorkloads:
		w, ok := m.selectedWorkload()
		if !ok {
			return mutedStyle.Render("  nothing selected") + "\n"
		}
		status := offlineStyle.Render(w.Status.String())
		if w.Status == domain.WorkloadRunning {
			status = onlineStyle.Render(w.Status.String())
		}
		return fmt.Sprintf("  %s %s (%s on %s)  %s  up %s\n  cpu %s  mem %s / %s (%s)\n",
			statusDot(w.Status == domain.WorkloadRunning),
			truncate(w.Name, 40), w.Kind.Label(), w.Node,
			status,
			domain.FormatUptime(w.Uptime),
			gauge(w.CPUUsage),
			domain.FormatBytes(w.MemoryUsed), domain.FormatBytes(w.MemoryMax),
			gauge(w.MemoryPercent()),
		)

	default:
		n, ok := m.selectedNode()
		if !ok {
			return mutedStyle.Render("  nothing selected") + "\n"
		}
		status := offlineStyle.Render(n.Status.String())
		if n.Status == domain.NodeOnline {
			status = onlineStyle.Render(n.Status.String())
		}
		return fmt.Sprintf("  %s %s  %s  up %s\n  cpu %s  mem %s / %s (%s)\n",
			statusDot(n.Status == domain.NodeOnline),
			truncate(n.Name, 40),
			status,
			domain.FormatUptime(n.Uptime),
			gauge(n.CPUUsage),
			domain.FormatBytes(n.MemoryUsed), domain.FormatBytes(n.MemoryTotal),
			gauge(n.MemoryPercent()),
		)
	}
}

func (m Model) renderStatusBar() string {
	if m.errMsg != "" {
		return errorBarStyle.Width(m.width).Render(
			truncate("Error: "+m.errMsg, m.width-4) + "  (refreshed " + m.timeSinceRefresh() + ")")
	}

	left := fmt.Sprintf("refreshed %s", m.timeSinceRefresh())
	right := "tab:panel  j/k:nav  s:sort  /:search  ?:help  q:quit"
	return statusBarStyle.Width(m.width).Render(left + "  " + mutedStyle.Render(right))
}

func (m Model) renderHelp() string {
	bindings := []struct{ key, desc string }{
		{"j / ↓", "move down"},
		{"k / ↑", "move up"},
		{"tab", "switch panel"},
		{"s", "cycle sort field (Name, Status, CPU, Memory)"},
		{"S", "toggle sort direction"},
		{"/", "search (enter keeps, esc clears)"},
		{"r", "refresh now"},
		{"?", "this help"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		b.WriteString(fmt.Sprintf("  %-8s %s\n", bind.key, bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("press any key to close"))

	return helpBoxStyle.Render(b.String()) + "\n"
}

// --- Render helpers ---

func statusDot(up bool) string {
	if up {
		return onlineStyle.Render("●")
	}
	return offlineStyle.Render("○")
}

// gauge renders a colorized percentage, clamped to 100 for display only.
func gauge(percent float64) string {
	shown := percent
	if shown > 100 {
		shown = 100
	}
	return gaugeStyle(percent).Render(fmt.Sprintf("%.1f%%", shown))
}

// miniBar draws a fixed-width utilization bar.
func miniBar(percent float64, width int) string {
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	filled := int(percent / 100 * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return gaugeStyle(percent).Render(bar)
}

func scrollStart(cursor, maxVisible int) int {
	if cursor >= maxVisible {
		return cursor - maxVisible + 1
	}
	return 0
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
