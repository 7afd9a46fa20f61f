package feedtui

import (
	"fmt"
	"strings"

	"instavibe/camera"
	"instavibe/lib"
	"instavibe/term"

	"github.com/charmbracelet/lipgloss"
)

var borderColor = lipgloss.Color("#444")
var helpTextColor = lipgloss.Color("#ddd")
var accentColor = lipgloss.Color("205")
var mutedColor = lipgloss.Color("245")
var errorColor = lipgloss.Color("#ff5f5f")
var okColor = lipgloss.Color("#5fd787")

func (m feedUIModel) View() string {
	if !m.ready {
		return "\n  " + m.spinner.View() + " Loading"
	}

	views := []string{m.renderHeader()}
	if m.mode == modeCompose {
		views = append(views, m.renderCompose())
	} else {
		views = append(views, m.feedViewport.View())
	}
	views = append(views, m.renderStatus(), m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, views...)
}

func (m feedUIModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render(" 📸 instavibe ")
	switch m.mode {
	case modeCompose:
		return title + lipgloss.NewStyle().Foreground(mutedColor).Render("new post")
	case modeSearch:
		return title + m.search.View()
	}
	if m.query != "" {
		return title + lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("filter: %q (%d)", m.query, len(m.entries)))
	}
	return title
}

// renderEntries returns the feed body and the line the selected post starts on.
func (m feedUIModel) renderEntries() (string, int) {
	if m.feed.Loading() && len(m.entries) == 0 {
		return m.spinner.View() + " Loading posts...", 0
	}
	if msg := m.feed.Err(); msg != "" {
		return lipgloss.NewStyle().Foreground(errorColor).Render("🚨 " + msg), 0
	}
	if len(m.entries) == 0 {
		if m.query != "" {
			return "No posts match your search.", 0
		}
		return lib.MsgNoPosts, 0
	}

	width := max(m.width-4, 20)
	nameStyle := lipgloss.NewStyle().Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(mutedColor)
	urlStyle := lipgloss.NewStyle().Foreground(mutedColor).Underline(true)
	brokenStyle := lipgloss.NewStyle().Foreground(errorColor)

	var sb strings.Builder
	selectedLine := 0
	lines := 0
	for i, e := range m.entries {
		if i == m.selected {
			selectedLine = lines
		}

		var block strings.Builder
		block.WriteString(nameStyle.Render(e.DisplayName))
		if e.Posted != "" {
			block.WriteString(" " + timeStyle.Render("· "+e.Posted))
		}
		block.WriteString("\n")
		block.WriteString(term.Wrap(e.Post.Caption, width-2))
		block.WriteString("\n")
		if e.ImageBroken {
			block.WriteString(brokenStyle.Render("🖼  image failed to load") + " " + urlStyle.Render(e.ImageUrl))
		} else {
			info := e.ImageUrl
			if e.ImageInfo != "" {
				info = e.ImageInfo + "  " + info
			}
			block.WriteString(urlStyle.Render("🖼  " + info))
		}
		block.WriteString("\n")
		block.WriteString(timeStyle.Render(e.Timestamp))

		style := lipgloss.NewStyle().
			Width(width).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(borderColor).
			PaddingLeft(1)
		if i == m.selected {
			style = style.BorderStyle(lipgloss.ThickBorder()).BorderForeground(accentColor)
		}

		rendered := style.Render(block.String())
		sb.WriteString(rendered)
		sb.WriteString("\n\n")
		lines += lipgloss.Height(rendered) + 1
	}

	return strings.TrimRight(sb.String(), "\n"), selectedLine
}

func (m feedUIModel) renderCompose() string {
	label := lipgloss.NewStyle().Bold(true)

	var sb strings.Builder
	sb.WriteString(label.Render("Username") + "\n")
	sb.WriteString(m.username.View() + "\n\n")
	sb.WriteString(label.Render("Caption") + "\n")
	sb.WriteString(m.caption.View() + "\n\n")

	sb.WriteString(label.Render("Photo") + " ")
	state := m.capture.State()
	switch {
	case state == camera.StateIdle && m.capture.Busy():
		sb.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("starting %s…", m.capture.DeviceName())))
	case state == camera.StateIdle:
		if m.composer.Variant() == lib.VariantTextOnly {
			sb.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render("text-only post, no photo needed"))
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("camera off (%s)", m.capture.DeviceName())))
		}
	case state == camera.StateStreaming:
		sb.WriteString(lipgloss.NewStyle().Foreground(accentColor).Render("● live"))
	case state == camera.StateCaptured:
		sb.WriteString(lipgloss.NewStyle().Foreground(okColor).Render("✓ captured"))
	}
	sb.WriteString("\n")

	if m.preview != "" {
		sb.WriteString(m.preview + "\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(sb.String())
}

func (m feedUIModel) renderStatus() string {
	switch {
	case m.busy != "":
		return " " + m.spinner.View() + " " + m.busy
	case m.errMsg != "":
		return lipgloss.NewStyle().Foreground(errorColor).Render(" 🚨 " + m.errMsg)
	case m.feed.Notice() != "" && m.mode != modeCompose:
		return lipgloss.NewStyle().Foreground(errorColor).Render(" 🚨 " + m.feed.Notice())
	case m.status != "":
		return lipgloss.NewStyle().Foreground(okColor).Render(" " + m.status)
	}
	return ""
}

func (m feedUIModel) renderHelp() string {
	style := lipgloss.NewStyle().Width(m.width).Foreground(helpTextColor).BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(borderColor)

	var s string
	switch m.mode {
	case modeCompose:
		s = " (tab) field • (ctrl+t) camera • (ctrl+p) photo • (ctrl+r) retake • (ctrl+s) post • (esc) cancel"
	case modeSearch:
		s = " (enter) apply • (esc) clear"
	case modeConfirmDelete:
		name := ""
		if e := m.current(); e != nil {
			name = e.DisplayName
		}
		s = fmt.Sprintf(" Delete post by %s? (y)es • (n)o", name)
	default:
		s = " (n)ew • (/) search • (r)efresh • (x) delete • (y) copy url • (o)pen • (i) check images • (j/k) move • (q)uit"
	}
	return style.Render(s)
}
