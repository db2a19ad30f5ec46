package health

import "context"

// Pinger reports whether the CRM answers.
type Pinger interface {
	HealthCheck(ctx context.Context) bool
}

// Service encapsulates health-related checks.
type Service struct {
	crm Pinger
}

// NewService constructs a health service over the CRM connection.
func NewService(crm Pinger) *Service {
	return &Service{crm: crm}
}

// Status reports overall service health and CRM connectivity. A CRM outage
// degrades the status but the endpoint itself stays up.
func (s *Service) Status(ctx context.Context) map[string]string {
	if s.crm != nil && s.crm.HealthCheck(ctx) {
		return map[string]string{"status": "healthy", "espocrm": "connected"}
	}
	return map[string]string{"status": "degraded", "espocrm": "disconnected"}
}
