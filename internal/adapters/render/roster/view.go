package roster

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kurzickkrozz/GWPB/internal/domain"
)

type RenderOptions struct {
	Now     time.Time
	Timeout time.Duration
	Catalog domain.Catalog
}

func renderView(parties []domain.Party, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Active Parties"),
		s.header.Render(fmt.Sprintf("parties: %d", len(parties))),
	}

	if len(parties) == 0 {
		lines = append(lines, s.empty.Render("No active parties."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, party := range parties {
		lines = append(lines, s.section.Render(renderParty(party, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderParty(party domain.Party, opts RenderOptions, s styles) string {
	parts := []string{
		s.party.Render(partyTitle(party, opts.Catalog)),
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.detail.Render(fmt.Sprintf("leader: %s", party.Leader)),
			"  ",
			renderFillBar(party.OccupiedCount(), len(party.Slots), 16, s),
			" ",
			s.detail.Render(fmt.Sprintf("%d/%d", party.OccupiedCount(), len(party.Slots))),
		),
		expiryLine(party, opts, s),
	}

	for i, slot := range party.Slots {
		parts = append(parts, slotLine(i, slot, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func partyTitle(party domain.Party, catalog domain.Catalog) string {
	name := string(party.Kind)
	if tmpl, err := catalog.Lookup(party.Kind); err == nil && strings.TrimSpace(tmpl.Name) != "" {
		name = tmpl.Name
	}
	return fmt.Sprintf("%s (%s)", name, party.ID)
}

func slotLine(index int, slot domain.Slot, s styles) string {
	label := s.role.Render(fmt.Sprintf("%2d. %s", index+1, slot.Role))
	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", occupantLabel(slot.Occupant, s))
}

func occupantLabel(occupant domain.Occupant, s styles) string {
	switch {
	case occupant.IsEmpty():
		return s.open.Render("open")
	case occupant.IsMember():
		return s.member.Render("@" + occupant.Value)
	default:
		return s.external.Render(occupant.Value + " (external)")
	}
}

func expiryLine(party domain.Party, opts RenderOptions, s styles) string {
	if opts.Timeout <= 0 {
		return s.detail.Render("created " + party.CreatedAt.UTC().Format(time.RFC3339))
	}

	deadline := party.Deadline(opts.Timeout)
	text := formatExpiryRelative(deadline, opts.Now)
	if !opts.Now.IsZero() && !deadline.After(opts.Now) {
		return s.warning.Render(text)
	}
	return s.detail.Render(text)
}

func renderFillBar(occupied, size, width int, s styles) string {
	if width <= 0 || size <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * float64(occupied) / float64(size)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatExpiryAt(deadline, now time.Time) string {
	if now.IsZero() {
		return deadline.Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := deadline.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return deadline.Format("15:04")
	}

	return deadline.Format("15:04 on 02 Jan")
}

func formatExpiryRelative(deadline, now time.Time) string {
	if now.IsZero() {
		return "expires " + formatExpiryAt(deadline, now)
	}

	if !deadline.After(now) {
		return "expiring now"
	}

	remaining := deadline.Sub(now)
	if remaining < time.Hour {
		minutes := int(math.Ceil(remaining.Minutes()))
		suffix := "minutes"
		if minutes == 1 {
			suffix = "minute"
		}
		return fmt.Sprintf("expires in %d %s (%s)", minutes, suffix, formatExpiryAt(deadline, now))
	}

	hours := int(math.Ceil(remaining.Hours()))
	suffix := "hours"
	if hours == 1 {
		suffix = "hour"
	}
	return fmt.Sprintf("expires in %d %s (%s)", hours, suffix, formatExpiryAt(deadline, now))
}

// RenderTemplates lists the catalog as plain aligned text.
func RenderTemplates(catalog domain.Catalog) string {
	s := newStyles()
	lines := []string{s.title.Render("Party Templates")}
	for _, tmpl := range catalog.Templates() {
		lines = append(lines, fmt.Sprintf("%-6s %-28s %2d  %s", tmpl.Kind, tmpl.Name, tmpl.Size(), strings.Join(tmpl.Roles, ", ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
