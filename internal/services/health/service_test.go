package health

import (
	"context"
	"testing"
)

type stubPinger struct{ up bool }

func (s stubPinger) HealthCheck(ctx context.Context) bool { return s.up }

func TestStatusHealthy(t *testing.T) {
	svc := NewService(stubPinger{up: true})
	status := svc.Status(context.Background())
	if status["status"] != "healthy" || status["espocrm"] != "connected" {
		t.Fatalf("unexpected status: %v", status)
	}
}

func TestStatusDegraded(t *testing.T) {
	svc := NewService(stubPinger{up: false})
	status := svc.Status(context.Background())
	if status["status"] != "degraded" || status["espocrm"] != "disconnected" {
		t.Fatalf("unexpected status: %v", status)
	}
}
