package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var styles = struct {
	Title  lipgloss.Style
	Muted  lipgloss.Style
	OK     lipgloss.Style
	Error  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
}{
	Title:  lipgloss.NewStyle().Bold(true),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
	Cell:   lipgloss.NewStyle().Padding(0, 1),
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Muted).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		})
}
