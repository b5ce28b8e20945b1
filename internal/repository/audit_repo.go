package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/storage"
)

type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
	ListForBooking(ctx context.Context, bookingID int64) ([]domain.AuditEntry, error)
}

type SQLAuditRepository struct {
	q storage.Querier
}

func NewAuditRepository(q storage.Querier) AuditRepository {
	return &SQLAuditRepository{q: q}
}

func (r *SQLAuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	id, err := r.q.InsertReturningID(ctx,
		`INSERT INTO booking_audit (booking_id, operation, details) VALUES (?, ?, ?) RETURNING id`,
		entry.BookingID, entry.Operation, entry.Details)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	entry.ID = id
	return nil
}

func (r *SQLAuditRepository) ListForBooking(ctx context.Context, bookingID int64) ([]domain.AuditEntry, error) {
	entries := make([]domain.AuditEntry, 0)
	if err := r.q.Query(ctx, &entries,
		`SELECT id, booking_id, operation, details, created_at FROM booking_audit WHERE booking_id = ? ORDER BY id`,
		bookingID); err != nil {
		return nil, fmt.Errorf("list audit for booking %d: %w", bookingID, err)
	}
	return entries, nil
}

var _ AuditRepository = (*SQLAuditRepository)(nil)
