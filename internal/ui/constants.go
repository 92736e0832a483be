// Package ui provides shared UI constants and utilities.
package ui

// Layout constants shared by the panels.
const (
	// ScrollMargin is the number of rows kept visible above/below a cursor.
	ScrollMargin = 2

	// BorderHeight is the space consumed by a panel border, on either axis.
	BorderHeight = 2

	// HeaderHeight is the space for a panel header and its separator.
	HeaderHeight = 2

	// PanelOverhead is the vertical overhead of a list panel:
	// listHeight = panelHeight - PanelOverhead.
	PanelOverhead = BorderHeight + HeaderHeight

	// MinPanelWidth is the narrowest width a panel is rendered at.
	MinPanelWidth = 20
)
