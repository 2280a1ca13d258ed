package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giovaniif/instrument-closet/domain/user"
)

type UserSQL struct{ *SQL }

const userColumns = `id, username, first_name, last_name, email, phone, is_admin`

func scanUser(row interface{ Scan(...any) error }) (user.User, error) {
	var u user.User
	err := row.Scan(&u.Id, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.IsAdmin)
	return u, err
}

func (r *UserSQL) Create(ctx context.Context, u user.User, passwordHash string) (created user.User, err error) {
	ctx, span := r.start(ctx, "users.create")
	defer func() { finish(span, err) }()

	created, err = scanUser(r.db.QueryRowContext(ctx, r.rebind(
		`INSERT INTO users (username, password, first_name, last_name, email, phone, is_admin)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING `+userColumns),
		u.Username, passwordHash, u.FirstName, u.LastName, u.Email, u.Phone, u.IsAdmin,
	))
	if isUniqueViolation(err) {
		return user.User{}, user.Duplicate(u.Username)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserSQL) GetByUsername(ctx context.Context, username string) (u user.User, err error) {
	ctx, span := r.start(ctx, "users.get_by_username")
	defer func() { finish(span, err) }()

	u, err = scanUser(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username))
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, user.NotFound(username)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("select user %s: %w", username, err)
	}
	return u, nil
}

func (r *UserSQL) GetById(ctx context.Context, id int64) (u user.User, err error) {
	ctx, span := r.start(ctx, "users.get_by_id")
	defer func() { finish(span, err) }()

	u, err = scanUser(r.db.QueryRowContext(ctx, r.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, user.NotFoundById(id)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("select user %d: %w", id, err)
	}
	return u, nil
}

func (r *UserSQL) PasswordHash(ctx context.Context, username string) (hash string, err error) {
	ctx, span := r.start(ctx, "users.password_hash")
	defer func() { finish(span, err) }()

	err = r.db.QueryRowContext(ctx, r.rebind(`SELECT password FROM users WHERE username = ?`), username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", user.NotFound(username)
	}
	if err != nil {
		return "", fmt.Errorf("select password of %s: %w", username, err)
	}
	return hash, nil
}

func (r *UserSQL) List(ctx context.Context) (out []user.User, err error) {
	ctx, span := r.start(ctx, "users.list")
	defer func() { finish(span, err) }()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserSQL) Update(ctx context.Context, u user.User) (err error) {
	ctx, span := r.start(ctx, "users.update")
	defer func() { finish(span, err) }()

	res, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE users SET first_name = ?, last_name = ?, email = ?, phone = ? WHERE id = ?`),
		u.FirstName, u.LastName, u.Email, u.Phone, u.Id,
	)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.Id, err)
	}
	return requireRow(res, user.NotFoundById(u.Id))
}

func (r *UserSQL) Delete(ctx context.Context, username string) (err error) {
	ctx, span := r.start(ctx, "users.delete")
	defer func() { finish(span, err) }()

	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM users WHERE username = ?`), username)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", username, err)
	}
	return requireRow(res, user.NotFound(username))
}
