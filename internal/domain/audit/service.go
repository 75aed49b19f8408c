package audit

import (
	"context"
	"fmt"
)

// Result is one resolved audit page. Authoritative is false only when the
// illustrative sample dataset was substituted for an empty environment; the
// console must label such a page instead of presenting it as real activity.
type Result struct {
	Records       []Log
	Total         int64
	Page          int
	PageSize      int
	Authoritative bool
}

// Service is the audit query engine.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Query resolves one page of the trail under the given filters. The count
// and the window are built from an identical predicate set (see Predicates),
// so the reported total always matches the page math.
func (s *Service) Query(ctx context.Context, f Filters, page, pageSize int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	records, total, err := s.repo.Query(ctx, f, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("audit query: %w", err)
	}

	if total == 0 {
		systemTotal, err := s.repo.CountAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("audit count: %w", err)
		}
		if systemTotal == 0 {
			sample := SampleLogs()
			return &Result{
				Records:       sample,
				Total:         int64(len(sample)),
				Page:          1,
				PageSize:      pageSize,
				Authoritative: false,
			}, nil
		}
	}

	return &Result{
		Records:       records,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		Authoritative: true,
	}, nil
}
