package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
	"github.com/99minutos/access-control/internal/pkg/metrics"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists every event it is given.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single audit event.
func (s *auditService) Process(ctx context.Context, ev domain.AuditEvent) error {
	if ev.Type == "" {
		return fmt.Errorf("process audit event: %w: missing type", domain.ErrInvalidInput)
	}

	if err := s.repo.InsertEvent(ctx, &ev); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(string(ev.Type), "error").Inc()
		return fmt.Errorf("process audit event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(ev.Type), "stored").Inc()
	s.log.Debug().
		Str("type", string(ev.Type)).
		Str("username", ev.Username).
		Str("reason", ev.Reason).
		Msg("audit event stored")

	return nil
}
