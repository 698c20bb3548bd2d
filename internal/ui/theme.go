// Package ui holds the terminal styles shared by the taleforge commands.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	IconScroll = "📜"
	IconSword  = "⚔️"
	IconHeart  = "❤️"
	IconMana   = "🔮"
	IconCoin   = "🪙"
	IconStar   = "✨"
	IconSkull  = "💀"
	IconWarn   = "⚠️"
	IconError  = "🧨"
	IconShop   = "🛒"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Label turns an identifier such as "main_weapon" into "Main Weapon".
func Label(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// Number formats n with thousands separators.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// Meter renders a current/max pool such as hearts, coloured by how full it is.
func Meter(cur, limit int) string {
	s := fmt.Sprintf("%d/%d", cur, limit)
	switch {
	case limit <= 0 || cur*4 <= limit:
		return Bad.Render(s)
	case cur*2 <= limit:
		return Warn.Render(s)
	default:
		return Good.Render(s)
	}
}
