package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giovaniif/instrument-closet/domain/category"
)

type CategorySQL struct{ *SQL }

func (r *CategorySQL) Create(ctx context.Context, name string) (c category.Category, err error) {
	ctx, span := r.start(ctx, "categories.create")
	defer func() { finish(span, err) }()

	err = r.db.QueryRowContext(ctx, r.rebind(`INSERT INTO categories (category) VALUES (?) RETURNING id, category`), name).Scan(&c.Id, &c.Category)
	if isUniqueViolation(err) {
		return category.Category{}, category.Duplicate(name)
	}
	if err != nil {
		return category.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *CategorySQL) Get(ctx context.Context, id int64) (c category.Category, err error) {
	ctx, span := r.start(ctx, "categories.get")
	defer func() { finish(span, err) }()

	err = r.db.QueryRowContext(ctx, r.rebind(`SELECT id, category FROM categories WHERE id = ?`), id).Scan(&c.Id, &c.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return category.Category{}, category.NotFound(id)
	}
	if err != nil {
		return category.Category{}, fmt.Errorf("select category %d: %w", id, err)
	}
	return c, nil
}

func (r *CategorySQL) List(ctx context.Context) (out []category.Category, err error) {
	ctx, span := r.start(ctx, "categories.list")
	defer func() { finish(span, err) }()

	return r.list(ctx, `SELECT id, category FROM categories ORDER BY id`)
}

func (r *CategorySQL) Rename(ctx context.Context, id int64, name string) (c category.Category, err error) {
	ctx, span := r.start(ctx, "categories.rename")
	defer func() { finish(span, err) }()

	err = r.db.QueryRowContext(ctx, r.rebind(`UPDATE categories SET category = ? WHERE id = ? RETURNING id, category`), name, id).Scan(&c.Id, &c.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return category.Category{}, category.NotFound(id)
	}
	if isUniqueViolation(err) {
		return category.Category{}, category.Duplicate(name)
	}
	if err != nil {
		return category.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	return c, nil
}

func (r *CategorySQL) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := r.start(ctx, "categories.delete")
	defer func() { finish(span, err) }()

	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return requireRow(res, category.NotFound(id))
}

func (r *CategorySQL) Tag(ctx context.Context, instrumentId int64, categoryId int64) (err error) {
	ctx, span := r.start(ctx, "categories.tag")
	defer func() { finish(span, err) }()

	if _, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO instrument_categories (instrument_id, category_id) VALUES (?, ?) ON CONFLICT DO NOTHING`),
		instrumentId, categoryId,
	); err != nil {
		return fmt.Errorf("tag instrument %d: %w", instrumentId, err)
	}
	return nil
}

func (r *CategorySQL) Untag(ctx context.Context, instrumentId int64, categoryId int64) (err error) {
	ctx, span := r.start(ctx, "categories.untag")
	defer func() { finish(span, err) }()

	if _, err := r.db.ExecContext(ctx, r.rebind(
		`DELETE FROM instrument_categories WHERE instrument_id = ? AND category_id = ?`),
		instrumentId, categoryId,
	); err != nil {
		return fmt.Errorf("untag instrument %d: %w", instrumentId, err)
	}
	return nil
}

func (r *CategorySQL) ForInstrument(ctx context.Context, instrumentId int64) (out []category.Category, err error) {
	ctx, span := r.start(ctx, "categories.for_instrument")
	defer func() { finish(span, err) }()

	return r.list(ctx, `SELECT c.id, c.category FROM categories c
		JOIN instrument_categories ic ON ic.category_id = c.id
		WHERE ic.instrument_id = ? ORDER BY c.id`, instrumentId)
}

func (r *CategorySQL) list(ctx context.Context, query string, args ...any) ([]category.Category, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []category.Category{}
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.Id, &c.Category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
