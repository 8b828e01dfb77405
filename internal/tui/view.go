package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-homedash/components/dashboard"
)

type styles struct {
	frame    lipgloss.Style
	selected lipgloss.Style
	inert    lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
	danger   lipgloss.Style
	header   lipgloss.Style
}

func newStyles(theme dashboard.Theme) styles {
	accent := lipgloss.Color(theme.Token("accent", "#6366F1"))
	muted := lipgloss.Color(theme.Token("muted", "#6B7280"))
	border := lipgloss.Color(theme.Token("border", "#E5E7EB"))
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	return styles{
		frame:    frame,
		selected: frame.BorderForeground(accent),
		inert:    frame.BorderStyle(lipgloss.NormalBorder()).Faint(true),
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:    lipgloss.NewStyle().Foreground(muted),
		danger:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Token("danger", "#DC2626"))),
		header:   lipgloss.NewStyle().Bold(true),
	}
}

// View renders the board as a two-column grid; span-2 frames take a full row.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render("homedash"))
	b.WriteString(m.styles.muted.Render("  " + m.view.Mode))
	b.WriteString("\n\n")

	column := m.width/2 - 2
	if column < 20 {
		column = 20
	}
	var row []string
	flush := func() {
		if len(row) > 0 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
			b.WriteString("\n")
			row = nil
		}
	}
	for i, frame := range m.view.Frames {
		width := column
		if frame.Span == 2 {
			flush()
			width = column*2 + 2
		}
		row = append(row, m.renderFrame(frame, i == m.cursor, width))
		if frame.Span == 2 || len(row) == 2 {
			flush()
		}
	}
	flush()

	if m.view.Editing && len(m.view.AddOptions) > 0 {
		names := make([]string, 0, len(m.view.AddOptions))
		for _, def := range m.view.AddOptions {
			names = append(names, def.ID)
		}
		b.WriteString(m.styles.muted.Render("add (a): " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.styles.muted.Render(helpLine(m.view.Editing)))
	return b.String()
}

func helpLine(editing bool) string {
	if editing {
		return "j/k select · h/l move · x remove · a add · e done · q quit"
	}
	return "j/k select · r refresh · e edit · R reset · q quit"
}

func (m Model) renderFrame(frame dashboard.FrameView, selected bool, width int) string {
	style := m.styles.frame
	switch {
	case frame.Inert && selected:
		style = m.styles.inert.BorderForeground(m.styles.selected.GetBorderTopForeground())
	case frame.Inert:
		style = m.styles.inert
	case selected:
		style = m.styles.selected
	}
	title := m.styles.title.Render(frame.Title)
	if len(frame.Controls) > 0 {
		title += m.styles.muted.Render("  [" + strings.Join(frame.Controls, " ") + "]")
	}
	body := frameBody(frame)
	if frame.Error != "" {
		body = m.styles.danger.Render(frame.Error)
	}
	return style.Width(width).Render(title + "\n" + body)
}

// frameBody renders the text form of a frame's data by kind. Unknown kinds
// render nothing.
func frameBody(frame dashboard.FrameView) string {
	data := frame.Data
	if data == nil {
		return ""
	}
	switch frame.Kind {
	case dashboard.KindInsight:
		switch data["status"] {
		case "succeeded":
			return fmt.Sprint(data["text"])
		case "failed":
			return "! " + fmt.Sprint(data["message"])
		default:
			message, _ := data["message"].(string)
			return message
		}
	case dashboard.KindActivityFeed:
		items := listOf(data["items"])
		if len(items) == 0 {
			return fmt.Sprint(data["empty_label"])
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, fmt.Sprintf("%v · %v", item["action"], item["ago"]))
		}
		return strings.Join(lines, "\n")
	case dashboard.KindSavedItems:
		items := listOf(data["items"])
		lines := make([]string, 0, len(items))
		for _, item := range items {
			line := fmt.Sprint(item["title"])
			if tag, _ := item["tag"].(string); tag != "" {
				line += " #" + tag
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	case dashboard.KindStats:
		items := listOf(data["items"])
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, fmt.Sprintf("%v  %v (%v)", item["label"], item["value"], item["delta"]))
		}
		return strings.Join(lines, "\n")
	case dashboard.KindTimer:
		return fmt.Sprintf("%v  %v", data["label"], data["duration"])
	default:
		return ""
	}
}

func listOf(value any) []map[string]any {
	switch v := value.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
