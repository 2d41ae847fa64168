package model

import "time"

// Dormancy is the activity bucket shown next to each repository.
type Dormancy string

const (
	DormancyActive         Dormancy = "Active"
	DormancyNeedsAttention Dormancy = "Needs attention"
	DormancyDormant        Dormancy = "Dormant"
)

const (
	activeWindowDays    = 7.0
	attentionWindowDays = 30.0
)

// ClassifyDormancy buckets elapsed days since updatedAt: under 7 is Active,
// under 30 is Needs attention, anything else is Dormant. Exactly 7.0 and
// 30.0 days fall into the later bucket.
func ClassifyDormancy(updatedAt, now time.Time) Dormancy {
	days := now.Sub(updatedAt).Hours() / 24
	switch {
	case days < activeWindowDays:
		return DormancyActive
	case days < attentionWindowDays:
		return DormancyNeedsAttention
	default:
		return DormancyDormant
	}
}

// CSSClass returns the status pill class used by the GUI.
func (d Dormancy) CSSClass() string {
	switch d {
	case DormancyActive:
		return "status-active"
	case DormancyNeedsAttention:
		return "status-attention"
	default:
		return "status-dormant"
	}
}
