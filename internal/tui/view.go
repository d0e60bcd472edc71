package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/smorton/sitegate/internal/schedule"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sitegate"))
	b.WriteString(dimStyle.Render("  " + m.now.Format("Mon 15:04:05")))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Schedules"))
	b.WriteString("\n")
	if len(m.current.Blocking.Schedules) == 0 {
		b.WriteString(dimStyle.Render("  none configured"))
		b.WriteString("\n")
	}
	for _, s := range m.current.Blocking.Schedules {
		switch {
		case !s.Enabled:
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ○ %s (disabled)", s.Name)))
		case schedule.IsActive(s, m.now):
			b.WriteString(activeStyle.Render(fmt.Sprintf("  ● %s", s.Name)))
			b.WriteString(dimStyle.Render("  " + schedule.FormatWindow(s)))
		default:
			b.WriteString(fmt.Sprintf("  ○ %s", s.Name))
			b.WriteString(dimStyle.Render("  " + schedule.FormatWindow(s)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Quick block"))
	b.WriteString("\n")
	switch {
	case m.active == nil:
		b.WriteString(dimStyle.Render("  inactive"))
	case m.active.EndTime == nil:
		b.WriteString(activeStyle.Render("  active until ended"))
	default:
		b.WriteString(activeStyle.Render("  active"))
		b.WriteString(dimStyle.Render("  " + countdown(*m.active.EndTime, m.now) + " left"))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Lock mode"))
	b.WriteString("\n")
	if m.lockState.IsLocked {
		b.WriteString(dangerStyle.Render("  locked"))
		b.WriteString(dimStyle.Render("  " + countdown(*m.lockState.LockEndTime, m.now) + " left"))
	} else {
		b.WriteString(dimStyle.Render("  off"))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Cosmetic filters"))
	b.WriteString("\n")
	switch {
	case !m.pauseState.IsPaused:
		b.WriteString(activeStyle.Render("  on"))
	case m.pauseState.Indefinite():
		b.WriteString(warningStyle.Render("  paused until resumed"))
	default:
		b.WriteString(warningStyle.Render("  paused"))
		b.WriteString(dimStyle.Render("  " + countdown(*m.pauseState.PauseEndTime, m.now) + " left"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(dangerStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return docStyle.Render(b.String())
}

func countdown(until, now time.Time) string {
	remaining := until.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	remaining = remaining.Round(time.Second)
	if remaining >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(remaining.Hours()), int(remaining.Minutes())%60)
	}
	return fmt.Sprintf("%dm%02ds", int(remaining.Minutes()), int(remaining.Seconds())%60)
}
