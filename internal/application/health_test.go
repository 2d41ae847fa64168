package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/gitmomentum/internal/application"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthService_Check(t *testing.T) {
	tests := []struct {
		name     string
		db       application.Pinger
		status   string
		database string
	}{
		{"no database", nil, "ok", "disabled"},
		{"database reachable", pingerFunc(func(context.Context) error { return nil }), "ok", "ok"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("disk I/O error") }), "degraded", "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, _ := newSession(&mockHostingClient{}, nil)
			svc := application.NewHealthService(tt.db, session)

			report := svc.Check(context.Background())

			assert.Equal(t, tt.status, report.Status)
			assert.Equal(t, tt.database, report.Database)
			assert.False(t, report.Connected)
			assert.False(t, report.CheckedAt.IsZero())
		})
	}
}
