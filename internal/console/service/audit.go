package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/thermal-policy-host/internal/audit"
	"github.com/xela07ax/thermal-policy-host/internal/repository/postgres"
)

// JournalReader описывает контракт для чтения журнала.
type JournalReader interface {
	FetchEntries(ctx context.Context, f postgres.EntryFilter) ([]audit.Entry, error)
	Summary(ctx context.Context) (postgres.JournalSummary, error)
}

type AuditService struct {
	repo JournalReader
}

func NewAuditService(repo JournalReader) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

// FetchLogs запрашивает журнал с фильтрацией.
// Логика фильтрации (пустые строки или конкретные значения) инкапсулирована в репозитории.
func (s *AuditService) FetchLogs(ctx context.Context, f postgres.EntryFilter) ([]audit.Entry, error) {
	logs, err := s.repo.FetchEntries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("audit_service: failed to fetch logs: %w", err)
	}
	return logs, nil
}

func (s *AuditService) Summary(ctx context.Context) (postgres.JournalSummary, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		return postgres.JournalSummary{}, fmt.Errorf("audit_service: failed to build summary: %w", err)
	}
	return sum, nil
}
