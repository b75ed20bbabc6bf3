package service

import (
	"context"
	"fmt"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

func (s *Service) ExportBackup(ctx context.Context) (domain.BackupDocument, error) {
	return s.repo.ExportAll(ctx)
}

// ImportBackup replaces the entire store with the document's tables.
// The metadata block is the marker that this is one of our backups;
// without it nothing is touched.
func (s *Service) ImportBackup(ctx context.Context, doc domain.BackupDocument) error {
	if doc.Meta == nil {
		return fmt.Errorf("%w: backup file has no metadata block", store.ErrValidation)
	}
	return s.repo.ImportAll(ctx, doc)
}

func (s *Service) BackupCounts(ctx context.Context) (map[string]int, error) {
	return s.repo.Counts(ctx)
}
