package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header       lipgloss.Style
	statusOnline lipgloss.Style
	statusOff    lipgloss.Style
	userLabel    lipgloss.Style
	agentLabel   lipgloss.Style
	systemLabel  lipgloss.Style
	messageBody  lipgloss.Style
	errorBody    lipgloss.Style
	imageLine    lipgloss.Style
	composing    lipgloss.Style
	badge        lipgloss.Style
	footer       lipgloss.Style
}

func newTheme() theme {
	return theme{
		header:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		statusOnline: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		statusOff:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		userLabel:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		agentLabel:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
		systemLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		messageBody:  lipgloss.NewStyle(),
		errorBody:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		imageLine:    lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Italic(true),
		composing:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		badge:        lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		footer:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
