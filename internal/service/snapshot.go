package service

import (
	"context"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
	"github.com/arjoma/scheinfirmen-at/internal/storage"
)

// SnapshotService defines read access to the latest archived snapshot.
// This decouples HTTP handlers from data access.
type SnapshotService interface {
	ListRecords(ctx context.Context, limit, offset int) (stand string, records []models.Record, total int, err error)
	MonthlyAdditions(ctx context.Context) (stand string, rows []models.MonthlyCount, err error)
	RecentAdditions(ctx context.Context, days int) (stand string, records []models.Record, err error)
}

type snapshotService struct {
	repo storage.SnapshotRepository
}

func NewSnapshotService(repo storage.SnapshotRepository) SnapshotService {
	return &snapshotService{repo: repo}
}

func (s *snapshotService) ListRecords(ctx context.Context, limit, offset int) (string, []models.Record, int, error) {
	stand, err := s.repo.LatestStand()
	if err != nil || stand == "" {
		return "", nil, 0, err
	}
	total, err := s.repo.CountRecords(stand)
	if err != nil {
		return "", nil, 0, err
	}
	records, err := s.repo.ListRecords(stand, limit, offset)
	if err != nil {
		return "", nil, 0, err
	}
	return stand, records, total, nil
}

func (s *snapshotService) MonthlyAdditions(ctx context.Context) (string, []models.MonthlyCount, error) {
	stand, err := s.repo.LatestStand()
	if err != nil || stand == "" {
		return "", nil, err
	}
	rows, err := s.repo.MonthlyAdditions(stand)
	if err != nil {
		return "", nil, err
	}
	return stand, rows, nil
}

func (s *snapshotService) RecentAdditions(ctx context.Context, days int) (string, []models.Record, error) {
	stand, err := s.repo.LatestStand()
	if err != nil || stand == "" {
		return "", nil, err
	}
	records, err := s.repo.RecentAdditions(stand, days)
	if err != nil {
		return "", nil, err
	}
	return stand, records, nil
}
