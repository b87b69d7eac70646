package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/JohnDeved/mediaseek/internal/catalog"
	"github.com/JohnDeved/mediaseek/internal/nav"
	"github.com/JohnDeved/mediaseek/internal/textfield"
	"github.com/JohnDeved/mediaseek/internal/util"
)

const (
	// header, blank, status, blank, help footer, scroll indicator
	chromeLines     = 6
	defaultListRows = 10
	maxSynopsisRows = 4
)

// row is one list entry: a primary label and muted metadata.
type row struct {
	label string
	meta  string
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(m.headerView())
	sb.WriteString("\n\n")

	switch m.state.Screen.(type) {
	case nav.Query:
		sb.WriteString(m.queryView())
		sb.WriteString("\n")
	default:
		if _, ok := m.state.Screen.(nav.Downloads); ok && m.state.Details != nil {
			for _, line := range detailLines(m.state.Details.Info, m.width) {
				sb.WriteString(padToWidth(line, m.width))
				sb.WriteString("\n")
			}
		}
		sb.WriteString(m.listView())
	}

	sb.WriteString(padToWidth(m.statusLine(), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(statusBarStyle.Render(m.help.View(screenHelp{
		keys:    m.keys,
		screen:  m.state.Screen,
		loading: m.state.Loading(),
	})))

	return sb.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("mediaseek")
	crumbWidth := m.width - lipgloss.Width(title) - 2
	if crumbWidth < 8 {
		crumbWidth = 8
	}
	return title + "  " + breadcrumbStyle.Render(util.TruncatePath(m.breadcrumb(), crumbWidth))
}

func (m Model) breadcrumb() string {
	parts := []string{"Search"}
	if _, ok := m.state.Screen.(nav.Query); ok {
		return parts[0]
	}
	parts = append(parts, fmt.Sprintf("%q", m.state.Field.Value()))
	if r, ok := m.state.SelectedResult(); ok {
		if _, onResults := m.state.Screen.(nav.Results); !onResults {
			parts = append(parts, r.Title)
		}
	}
	if d, ok := m.state.SelectedDownload(); ok {
		if _, onFiles := m.state.Screen.(nav.Files); onFiles {
			parts = append(parts, d.FileName)
		}
	}
	return strings.Join(parts, " > ")
}

func (m Model) queryView() string {
	inner := m.state.Field.Limit() + 1
	if avail := m.width - 12; inner > avail {
		inner = avail
	}
	if inner < 10 {
		inner = 10
	}
	box := fieldStyle.Render(renderField(m.state.Field, inner))
	label := searchPromptStyle.Render("Search: ")
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box)
}

// renderField draws the field content in a window of width cells that always
// contains the cursor. The cursor cell is drawn reversed.
func renderField(f textfield.Field, width int) string {
	runes := []rune(f.Value())
	cur := f.Cursor()

	start := 0
	if cur >= width {
		start = cur - width + 1
	}
	end := min(len(runes), start+width)

	at := " "
	var after string
	if cur < len(runes) {
		at = string(runes[cur])
		after = string(runes[cur+1 : end])
	}
	line := string(runes[start:cur]) + cursorStyle.Render(at) + after
	return padToWidth(line, width)
}

func (m Model) listView() string {
	rows := m.rows()
	if len(rows) == 0 {
		return helpStyle.Render("  "+m.emptyMessage()) + "\n"
	}

	sel, _ := m.state.Selection()
	visible := m.listRows()
	end := min(len(rows), m.offset+visible)

	labelWidth := max(12, m.width*3/5)
	metaWidth := max(8, m.width-labelWidth-6)

	var sb strings.Builder
	for i := m.offset; i < end; i++ {
		r := rows[i]
		label := util.Truncate(r.label, labelWidth)
		meta := util.TruncatePath(r.meta, metaWidth)
		var line string
		if i == sel {
			line = selectedStyle.Render("> " + label)
		} else {
			line = normalStyle.Render("  " + label)
		}
		if meta != "" {
			line += "  " + metaStyle.Render(meta)
		}
		sb.WriteString(padToWidth(line, m.width))
		sb.WriteString("\n")
	}

	if len(rows) > visible {
		pct := float64(m.offset) / float64(len(rows)-visible) * 100
		sb.WriteString(helpStyle.Render(
			fmt.Sprintf("  %d/%d items (%.0f%%)", sel+1, len(rows), pct),
		))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) rows() []row {
	switch m.state.Screen.(type) {
	case nav.Results:
		out := make([]row, len(m.state.Results))
		for i, r := range m.state.Results {
			out[i] = row{label: r.Title, meta: r.Path}
		}
		return out
	case nav.Downloads:
		items := m.state.DownloadItems()
		out := make([]row, len(items))
		for i, d := range items {
			out[i] = row{label: d.FileName, meta: "seeders " + util.OrDash(d.SeederCount)}
		}
		return out
	case nav.Files:
		out := make([]row, len(m.state.Files))
		for i, f := range m.state.Files {
			out[i] = row{label: f.Name, meta: fmt.Sprintf("conn %s  %s", util.OrDash(f.ConnectionCount), f.FilePath)}
		}
		return out
	}
	return nil
}

func (m Model) emptyMessage() string {
	switch m.state.Screen.(type) {
	case nav.Results:
		return "No results found."
	case nav.Downloads:
		return "No download sources."
	case nav.Files:
		return "No files."
	}
	return ""
}

func (m Model) listLen() int {
	switch m.state.Screen.(type) {
	case nav.Results:
		return len(m.state.Results)
	case nav.Downloads:
		return len(m.state.DownloadItems())
	case nav.Files:
		return len(m.state.Files)
	}
	return 0
}

// listRows is the number of list rows that fit below the chrome.
func (m Model) listRows() int {
	if m.height <= 0 {
		return defaultListRows
	}
	used := chromeLines
	if _, ok := m.state.Screen.(nav.Downloads); ok && m.state.Details != nil {
		used += len(detailLines(m.state.Details.Info, m.width))
	}
	return max(1, m.height-used)
}

func (m Model) statusLine() string {
	switch {
	case m.state.Loading():
		msg := loadingMessage(m.state.Pending.Kind)
		elapsed := time.Since(m.startedAt).Seconds()
		if elapsed >= 1 {
			msg = fmt.Sprintf("%s (%.0fs)", msg, elapsed)
		}
		return "  " + m.spinner.View() + " " + msg
	case m.state.Err != nil:
		return errorStyle.Render(fmt.Sprintf("  Error: %v", m.state.Err))
	}
	return ""
}

func loadingMessage(k nav.FetchKind) string {
	switch k {
	case nav.FetchSearch:
		return "Searching..."
	case nav.FetchDetails:
		return "Loading details..."
	case nav.FetchFiles:
		return "Loading files..."
	}
	return "Loading..."
}

// detailLines renders the info block shown above the download sources.
func detailLines(info catalog.DetailInfo, width int) []string {
	field := func(name, value string) string {
		return labelStyle.Render(fmt.Sprintf("  %-10s", name)) + " " + value
	}
	valueWidth := max(12, width-13)

	lines := []string{
		field("Runtime", util.OrDash(info.Runtime)) + "   " + labelStyle.Render("Downloads") + " " + util.OrDash(info.DownloadCount),
		field("Genres", util.Truncate(util.OrDash(util.Join(info.Genres, ", ")), valueWidth)),
		field("Cast", util.Truncate(util.OrDash(util.Join(info.Cast, ", ")), valueWidth)),
	}

	if synopsis := strings.TrimSpace(info.Synopsis); synopsis != "" {
		wrapped := lipgloss.NewStyle().Width(max(20, width-4)).Render(synopsis)
		syn := strings.Split(wrapped, "\n")
		if len(syn) > maxSynopsisRows {
			syn = syn[:maxSynopsisRows]
			syn[maxSynopsisRows-1] = strings.TrimRight(syn[maxSynopsisRows-1], " ") + "..."
		}
		for _, s := range syn {
			lines = append(lines, "  "+metaStyle.Render(s))
		}
	}
	return append(lines, "")
}

func padToWidth(s string, width int) string {
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}
