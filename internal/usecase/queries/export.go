package queries

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"garage-reservation/internal/pkg/errs"
)

type ExportQueries interface {
	BookingsCSV(ctx context.Context) ([]byte, error)
}

type exportQueriesImpl struct {
	store BookingReadStore
}

func NewExportQueries(store BookingReadStore) ExportQueries {
	return &exportQueriesImpl{store: store}
}

func (q *exportQueriesImpl) BookingsCSV(ctx context.Context) ([]byte, error) {
	bookings, err := q.store.ListAll(ctx, nil, "")
	if err != nil {
		return nil, translateReadErr(err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Booking ID", "Student Name", "Student ID", "Start Month", "End Month", "Duration", "Slot", "Status", "Message"}
	if err := w.Write(header); err != nil {
		return nil, errs.Wrap(err, "failed to write CSV header")
	}

	for _, b := range bookings {
		slot := ""
		if s := b.Slot(); s != nil {
			slot = strconv.Itoa(*s)
		}
		record := []string{
			b.ID().String(),
			b.StudentName(),
			b.StudentID(),
			b.StartMonth(),
			b.EndMonth(),
			strconv.Itoa(b.DurationMonths()),
			slot,
			b.Status().String(),
			b.Message(),
		}
		if err := w.Write(record); err != nil {
			return nil, errs.Wrap(err, "failed to write CSV record")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.Wrap(err, "failed to flush CSV")
	}
	return buf.Bytes(), nil
}
