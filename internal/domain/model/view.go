package model

import "fmt"

// View is the section of the dashboard currently shown.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewAnalysis  View = "analysis"
	ViewStreak    View = "streak"
	ViewGenerator View = "generator"
	ViewSettings  View = "settings"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewDashboard, ViewAnalysis, ViewStreak, ViewGenerator, ViewSettings:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}
