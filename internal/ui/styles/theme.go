// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application. The two
// accent colors are user-configurable; Rebuild derives every dependent
// style from them.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Accents as configured (hex strings)
	Primary   lipgloss.Color
	Secondary lipgloss.Color

	// ==========================================================================
	// LAYOUT STYLES
	// ==========================================================================

	App     lipgloss.Style
	Header  lipgloss.Style
	Sidebar lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	MessageMeta    lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	SectionTitle        lipgloss.Style
	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style
	SessionItemActive   lipgloss.Style
	DocumentItem        lipgloss.Style
	DocPending          lipgloss.Style
	DocProcessing       lipgloss.Style
	DocCompleted        lipgloss.Style
	DocFailed           lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputDisabled  lipgloss.Style
	StatusBar      lipgloss.Style
	Connected      lipgloss.Style
	Disconnected   lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Spinner        lipgloss.Style

	// ==========================================================================
	// FORM AND FEEDBACK STYLES
	// ==========================================================================

	FormBox      lipgloss.Style
	FormTitle    lipgloss.Style
	FormLabel    lipgloss.Style
	FormHint     lipgloss.Style
	ErrorToast   lipgloss.Style
	SuccessToast lipgloss.Style
}

// NewTheme creates a theme around the two accent colors.
func NewTheme(primary, secondary string) *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.Rebuild(primary, secondary)
	return t
}

// Rebuild re-derives every style from a new accent pair. Called when
// the user changes their colors in settings.
func (t *Theme) Rebuild(primary, secondary string) {
	t.Primary = lipgloss.Color(primary)
	t.Secondary = lipgloss.Color(secondary)

	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Background(SurfaceDim).
		Padding(0, 2)

	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(TextMuted)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.SectionTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginTop(1)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SessionItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceBright)

	t.SessionItemActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary)

	t.DocumentItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.DocPending = lipgloss.NewStyle().Foreground(TextMuted)
	t.DocProcessing = lipgloss.NewStyle().Foreground(Amber)
	t.DocCompleted = lipgloss.NewStyle().Foreground(Emerald)
	t.DocFailed = lipgloss.NewStyle().Foreground(Rose)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)

	t.InputDisabled = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(TextMuted).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.Connected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.Disconnected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Spinner = lipgloss.NewStyle().
		Foreground(t.Primary)

	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3)

	t.FormTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FormHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorToast = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.SuccessToast = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)
}

// DocStatusStyle returns the style for an ingestion status string.
func (t *Theme) DocStatusStyle(status string) lipgloss.Style {
	switch status {
	case "processing":
		return t.DocProcessing
	case "completed":
		return t.DocCompleted
	case "failed":
		return t.DocFailed
	default:
		return t.DocPending
	}
}
