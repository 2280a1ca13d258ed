package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/giovaniif/instrument-closet/domain/reservation"
)

type ReservationSQL struct{ *SQL }

const reservationColumns = `id, user_id, instrument_id, quantity, start_time, end_time, notes`

func scanReservation(row interface{ Scan(...any) error }) (reservation.Reservation, error) {
	var r reservation.Reservation
	err := row.Scan(&r.Id, &r.UserId, &r.InstrumentId, &r.Quantity, &r.StartTime, &r.EndTime, &r.Notes)
	return r, err
}

func (r *ReservationSQL) Create(ctx context.Context, resv reservation.Reservation) (created reservation.Reservation, err error) {
	ctx, span := r.start(ctx, "reservations.create")
	defer func() { finish(span, err) }()

	created, err = scanReservation(r.db.QueryRowContext(ctx, r.rebind(
		`INSERT INTO reservations (user_id, instrument_id, quantity, start_time, end_time, notes)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING `+reservationColumns),
		resv.UserId, resv.InstrumentId, resv.Quantity, resv.StartTime, resv.EndTime, resv.Notes,
	))
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}
	return created, nil
}

func (r *ReservationSQL) Get(ctx context.Context, id int64) (resv reservation.Reservation, err error) {
	ctx, span := r.start(ctx, "reservations.get")
	defer func() { finish(span, err) }()

	resv, err = scanReservation(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return reservation.Reservation{}, reservation.NotFound(id)
	}
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("select reservation %d: %w", id, err)
	}
	return resv, nil
}

// FindOverlapping pushes the half-open overlap predicate into SQL.
func (r *ReservationSQL) FindOverlapping(ctx context.Context, q reservation.Query) (out []reservation.Reservation, err error) {
	ctx, span := r.start(ctx, "reservations.find_overlapping")
	defer func() { finish(span, err) }()

	clauses := []string{"instrument_id = ?"}
	args := []any{q.InstrumentId}
	if q.End != nil {
		clauses = append(clauses, "start_time < ?")
		args = append(args, *q.End)
	}
	if q.Start != nil {
		clauses = append(clauses, "end_time > ?")
		args = append(args, *q.Start)
	}
	if q.ExcludeId != nil {
		clauses = append(clauses, "id <> ?")
		args = append(args, *q.ExcludeId)
	}
	return r.query(ctx, clauses, args)
}

func (r *ReservationSQL) FindAll(ctx context.Context, f reservation.Filter) (out []reservation.Reservation, err error) {
	ctx, span := r.start(ctx, "reservations.find_all")
	defer func() { finish(span, err) }()

	var clauses []string
	var args []any
	if f.UserId != nil {
		clauses = append(clauses, "user_id = ?")
		args = append(args, *f.UserId)
	}
	if f.InstrumentId != nil {
		clauses = append(clauses, "instrument_id = ?")
		args = append(args, *f.InstrumentId)
	}
	return r.query(ctx, clauses, args)
}

func (r *ReservationSQL) query(ctx context.Context, clauses []string, args []any) ([]reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []reservation.Reservation{}
	for rows.Next() {
		resv, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, resv)
	}
	return out, rows.Err()
}

func (r *ReservationSQL) Update(ctx context.Context, resv reservation.Reservation) (err error) {
	ctx, span := r.start(ctx, "reservations.update")
	defer func() { finish(span, err) }()

	res, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE reservations SET quantity = ?, start_time = ?, end_time = ?, notes = ? WHERE id = ?`),
		resv.Quantity, resv.StartTime, resv.EndTime, resv.Notes, resv.Id,
	)
	if err != nil {
		return fmt.Errorf("update reservation %d: %w", resv.Id, err)
	}
	return requireRow(res, reservation.NotFound(resv.Id))
}

func (r *ReservationSQL) Remove(ctx context.Context, id int64) (err error) {
	ctx, span := r.start(ctx, "reservations.remove")
	defer func() { finish(span, err) }()

	if _, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM reservations WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}
	return nil
}
