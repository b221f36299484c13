// Package tui provides the interactive page run monitor.
package tui

import (
	"fmt"
	"strings"

	"github.com/deferview/deferview/color"
	"github.com/deferview/deferview/icon"
	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/media"
	"github.com/deferview/deferview/portal"
	"github.com/deferview/deferview/style"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/viper"
)

func (m *model) View() string {
	var b strings.Builder

	title := style.Title(fmt.Sprintf("deferview %s", m.pagePath))
	if m.width > 0 {
		title = wordwrap.String(title, m.width)
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.unloaded {
		b.WriteString(style.Faint("page unloaded"))
		b.WriteString("\n\n")
	}

	for i, r := range m.rows {
		b.WriteString(m.renderRow(i, r))
		b.WriteRune('\n')
	}
	if len(m.rows) == 0 {
		b.WriteString(style.Faint("nothing to monitor on this page"))
		b.WriteRune('\n')
	}

	b.WriteString("\n")
	b.WriteString(m.helpC.View(m.keymap))
	return b.String()
}

func (m *model) renderRow(i int, r row) string {
	cursor := "  "
	if i == m.cursor {
		cursor = style.Fg(color.Orange)("> ")
	}

	visibility := " "
	if m.engine.Visible(r.id) {
		visibility = icon.Get(icon.Eye)
	}

	if r.record != nil {
		line := fmt.Sprintf("%s%s %s %s %s",
			cursor,
			icon.Get(icon.Image),
			style.Bold(r.id),
			visibility,
			m.renderMediaStatus(r.record.Status()),
		)
		if viper.GetBool(key.TUIShowTargets) {
			line += " " + style.Faint(r.record.Target())
		}
		return line
	}

	return fmt.Sprintf("%s%s %s %s %s",
		cursor,
		icon.Get(icon.Video),
		style.Bold(r.id),
		visibility,
		m.renderPortalStatus(r.ctrl.Status()),
	)
}

func (m *model) renderMediaStatus(s media.Status) string {
	switch s {
	case media.StatusPending:
		return style.Faint(s.String())
	case media.StatusLoading:
		return fmt.Sprintf("%s %s", m.spinnerC.View(), s)
	case media.StatusLoaded:
		return style.Fg(color.Green)(fmt.Sprintf("%s %s", icon.Get(icon.Success), s))
	default:
		return style.Fg(color.Red)(fmt.Sprintf("%s %s", icon.Get(icon.Fail), s))
	}
}

func (m *model) renderPortalStatus(s portal.Status) string {
	switch s {
	case portal.StatusIdle:
		return style.Faint(s.String())
	case portal.StatusAwaitingSdk:
		return fmt.Sprintf("%s %s", m.spinnerC.View(), s)
	case portal.StatusPlaying:
		return style.Fg(color.Green)(fmt.Sprintf("%s %s", icon.Get(icon.Play), s))
	case portal.StatusPaused:
		return style.Fg(color.Yellow)(fmt.Sprintf("%s %s", icon.Get(icon.Pause), s))
	default:
		return style.Fg(color.Cyan)(s.String())
	}
}
