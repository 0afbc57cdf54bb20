// ABOUTME: Backup, restore, import and merge operations on the store
// ABOUTME: Role checks decide which of the backup flows an actor may run
package crm

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/harperreed/medcrm/backup"
	"github.com/harperreed/medcrm/models"
)

// ExportFull snapshots every collection, users included.
func (s *Service) ExportFull(ctx context.Context, actor *models.User) (*backup.FullBackup, error) {
	ds, me, _, err := s.read(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(me); err != nil {
		return nil, err
	}
	return backup.NewFull(ds, me.ID, s.now()), nil
}

// RestoreFull replaces the whole store with a full backup and then
// re-applies the canonical admin account.
func (s *Service) RestoreFull(ctx context.Context, actor *models.User, data []byte) error {
	b, err := backup.ParseFull(data)
	if err != nil {
		return err
	}
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := requireAdmin(me); err != nil {
			return err
		}
		*ds = b.Dataset
		s.logger.Info("restored full backup",
			zap.String("backup_id", b.Metadata.BackupID),
			zap.String("exported_by", b.Metadata.ExportedBy))
		return s.syncAccounts(ds)
	})
}

// ExportSalesperson builds the backup an admin hands to one salesperson.
func (s *Service) ExportSalesperson(ctx context.Context, actor *models.User, salespersonID string) (*backup.SalespersonBackup, error) {
	ds, me, _, err := s.read(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(me); err != nil {
		return nil, err
	}
	if sp, _ := ds.FindSalesperson(salespersonID); sp == nil {
		return nil, notFound("salesperson", salespersonID)
	}
	return backup.ForSalesperson(ds, salespersonID), nil
}

// ExportWorkday packages a salesperson's current view for the admin to
// merge.
func (s *Service) ExportWorkday(ctx context.Context, actor *models.User) (*backup.SalespersonBackup, error) {
	ds, me, _, err := s.read(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := requireSalesperson(me); err != nil {
		return nil, err
	}
	return &backup.SalespersonBackup{
		SourceSalespersonID: me.ID,
		View:                *DeriveView(me, ds),
	}, nil
}

// ImportFromAdmin loads a backup the admin exported for actor, replacing
// the working collections.
func (s *Service) ImportFromAdmin(ctx context.Context, actor *models.User, data []byte) error {
	b, err := backup.ParseSalesperson(data)
	if err != nil {
		return err
	}
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := requireSalesperson(me); err != nil {
			return err
		}
		if b.SourceSalespersonID != me.ID {
			return fmt.Errorf("%w: backup belongs to salesperson %s", ErrForbidden, b.SourceSalespersonID)
		}
		backup.ApplyImport(ds, b)
		return nil
	})
}

// MergeWorkday folds a salesperson's workday export into the store.
func (s *Service) MergeWorkday(ctx context.Context, actor *models.User, data []byte) error {
	b, err := backup.ParseMerge(data)
	if err != nil {
		return err
	}
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := requireAdmin(me); err != nil {
			return err
		}
		backup.Merge(ds, b)
		s.logger.Info("merged workday data", zap.String("salesperson_id", b.SourceSalespersonID))
		return nil
	})
}

// ExportWorkbook writes actor's view as an XLSX workbook.
func (s *Service) ExportWorkbook(ctx context.Context, actor *models.User, w io.Writer) error {
	view, err := s.View(ctx, actor)
	if err != nil {
		return err
	}
	return backup.WriteWorkbook(w, view)
}
