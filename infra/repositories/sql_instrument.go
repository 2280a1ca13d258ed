package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giovaniif/instrument-closet/domain/instrument"
)

type InstrumentSQL struct{ *SQL }

const instrumentColumns = `id, name, quantity, description, image_url`

func scanInstrument(row interface{ Scan(...any) error }) (instrument.Instrument, error) {
	var inst instrument.Instrument
	err := row.Scan(&inst.Id, &inst.Name, &inst.Quantity, &inst.Description, &inst.ImageURL)
	return inst, err
}

func (r *InstrumentSQL) Get(ctx context.Context, id int64) (inst instrument.Instrument, err error) {
	ctx, span := r.start(ctx, "instruments.get")
	defer func() { finish(span, err) }()

	inst, err = scanInstrument(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+instrumentColumns+` FROM instruments WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return instrument.Instrument{}, instrument.NotFound(id)
	}
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("select instrument %d: %w", id, err)
	}
	return inst, nil
}

func (r *InstrumentSQL) List(ctx context.Context) (out []instrument.Instrument, err error) {
	ctx, span := r.start(ctx, "instruments.list")
	defer func() { finish(span, err) }()

	rows, err := r.db.QueryContext(ctx, `SELECT `+instrumentColumns+` FROM instruments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select instruments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = []instrument.Instrument{}
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (r *InstrumentSQL) Create(ctx context.Context, inst instrument.Instrument) (created instrument.Instrument, err error) {
	ctx, span := r.start(ctx, "instruments.create")
	defer func() { finish(span, err) }()

	created, err = scanInstrument(r.db.QueryRowContext(ctx, r.rebind(
		`INSERT INTO instruments (name, quantity, description, image_url) VALUES (?, ?, ?, ?) RETURNING `+instrumentColumns),
		inst.Name, inst.Quantity, inst.Description, inst.ImageURL,
	))
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("insert instrument: %w", err)
	}
	return created, nil
}

func (r *InstrumentSQL) Update(ctx context.Context, inst instrument.Instrument) (err error) {
	ctx, span := r.start(ctx, "instruments.update")
	defer func() { finish(span, err) }()

	res, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE instruments SET name = ?, quantity = ?, description = ?, image_url = ? WHERE id = ?`),
		inst.Name, inst.Quantity, inst.Description, inst.ImageURL, inst.Id,
	)
	if err != nil {
		return fmt.Errorf("update instrument %d: %w", inst.Id, err)
	}
	return requireRow(res, instrument.NotFound(inst.Id))
}

// Delete relies on ON DELETE CASCADE for reservations and tags.
func (r *InstrumentSQL) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := r.start(ctx, "instruments.delete")
	defer func() { finish(span, err) }()

	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM instruments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete instrument %d: %w", id, err)
	}
	return requireRow(res, instrument.NotFound(id))
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
