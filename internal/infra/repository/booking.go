package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garage-reservation/internal/domain/booking"
	"garage-reservation/internal/infra"
	"garage-reservation/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, username, student_name, student_id, start_month, end_month,
	duration_months, slot, status, message, created_at, updated_at`

// BookingRepository is the store the allocation core talks to. The store is
// treated as an external collaborator: every round-trip is bounded by the
// configured storage timeout and a deadline surfaces as KindUnavailable.
type BookingRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewBookingRepository(db *pgxpool.Pool, cfg config.Config) *BookingRepository {
	return &BookingRepository{
		db:      db,
		timeout: cfg.Garage.StorageTimeout,
	}
}

func (r *BookingRepository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *BookingRepository) ListApproved(ctx context.Context) ([]*booking.Booking, error) {
	return r.listByStatus(ctx, booking.StatusApproved)
}

func (r *BookingRepository) ListPending(ctx context.Context) ([]*booking.Booking, error) {
	return r.listByStatus(ctx, booking.StatusPending)
}

func (r *BookingRepository) listByStatus(ctx context.Context, status booking.Status) ([]*booking.Booking, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE status = $1 ORDER BY id`,
		status.String())
	if err != nil {
		return nil, wrapBookingErr("failed to list bookings by status", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingRepository) ListAll(ctx context.Context, status *booking.Status, search string) ([]*booking.Booking, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var conds []string
	var args []any

	if status != nil {
		args = append(args, status.String())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf("(student_name ILIKE $%d OR student_id ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapBookingErr("failed to list bookings", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingRepository) ListByUsername(ctx context.Context, username string) ([]*booking.Booking, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE username = $1 ORDER BY id`,
		username)
	if err != nil {
		return nil, wrapBookingErr("failed to list bookings by username", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, wrapBookingErr("failed to find booking by ID", err)
	}
	return b, nil
}

// Create persists a new booking under its entity-assigned sortable identity.
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) (uuid.UUID, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (id, username, student_name, student_id, start_month, end_month,
			duration_months, slot, status, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID(), b.Username(), b.StudentName(), b.StudentID(), b.StartMonth(), b.EndMonth(),
		b.DurationMonths(), slotToPgtype(b.Slot()), b.Status().String(), b.Message())
	if err != nil {
		return uuid.Nil, wrapBookingErr("failed to create booking", err)
	}
	return b.ID(), nil
}

// Patch applies a partial update; ClearSlot stores NULL (slot release).
func (r *BookingRepository) Patch(ctx context.Context, id uuid.UUID, p booking.Patch) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	sets := []string{"updated_at = now()"}
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	switch {
	case p.ClearSlot:
		sets = append(sets, "slot = NULL")
	case p.Slot != nil:
		add("slot", *p.Slot)
	}
	if p.Status != nil {
		add("status", p.Status.String())
	}
	if p.Message != nil {
		add("message", *p.Message)
	}
	if p.EndMonth != nil {
		add("end_month", *p.EndMonth)
	}
	if p.DurationMonths != nil {
		add("duration_months", *p.DurationMonths)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE bookings SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapBookingErr("failed to patch booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return wrapBookingErr("failed to delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*booking.Booking, error) {
	var (
		id                   uuid.UUID
		username             string
		studentName          string
		studentID            string
		startMonth, endMonth string
		durationMonths       int
		slot                 pgtype.Int4
		status               string
		message              string
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&id, &username, &studentName, &studentID, &startMonth, &endMonth,
		&durationMonths, &slot, &status, &message, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var slotPtr *int
	if slot.Valid {
		s := int(slot.Int32)
		slotPtr = &s
	}

	return booking.ReconstructBooking(
		id, username, studentName, studentID,
		startMonth, endMonth, durationMonths,
		slotPtr, booking.Status(status), message,
		createdAt.Time, updatedAt.Time,
	), nil
}

func scanBookings(rows pgx.Rows) ([]*booking.Booking, error) {
	var result []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrapBookingErr("failed to scan booking row", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapBookingErr("failed to read booking rows", err)
	}
	return result, nil
}

func slotToPgtype(slot *int) pgtype.Int4 {
	if slot == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*slot), Valid: true}
}

func wrapBookingErr(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return infra.WrapRepoErr(msg, err, infra.KindUnavailable)
	}
	return infra.WrapRepoErr(msg, err)
}
