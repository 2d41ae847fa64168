package application

import (
	"context"
	"time"
)

// Pinger is implemented by stores that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReport is the liveness view served to probes.
type HealthReport struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Connected bool      `json:"connected"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthService reports process health. db may be nil when persistence is
// disabled.
type HealthService struct {
	db      Pinger
	session *Session
}

// NewHealthService creates a HealthService.
func NewHealthService(db Pinger, session *Session) *HealthService {
	return &HealthService{db: db, session: session}
}

// Check pings the database and reports session state. A database failure
// degrades the status but never fails the call.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:    "ok",
		Database:  "disabled",
		Connected: s.session.Connected(),
		CheckedAt: time.Now().UTC(),
	}

	if s.db != nil {
		report.Database = "ok"
		if err := s.db.Ping(ctx); err != nil {
			report.Status = "degraded"
			report.Database = "unreachable"
		}
	}
	return report
}
