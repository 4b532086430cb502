package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"tienda-online/internal/model"
	"tienda-online/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// telefono and ultimo_login are nullable columns; COALESCE keeps the scan simple.
const userColumns = "id,email,password_hash,nombre,rol,COALESCE(telefono,''),COALESCE(ultimo_login,created_at),es_activo,created_at,updated_at"

// Create inserts a user with the default "usuario" role and returns its ID.
func (r *UserRepo) Create(ctx context.Context, nombre, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, nombre, rol) VALUES (?,?,?,'usuario')",
		email, hash, nombre)
	if err != nil {
		// MySQL 1062 = duplicate key on the unique email index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Exists reports whether a user id still resolves to a row.  Used by the
// auth middleware so tokens for deleted accounts stop working.
func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProfile updates nombre, email and telefono and returns the fresh row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, nombre, email, telefono string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET nombre=?, email=?, telefono=? WHERE id=?",
		nombre, email, telefono, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and a no-op update, so
		// confirm existence before reporting not found.
		if ok, err2 := r.Exists(ctx, id); err2 == nil && !ok {
			return model.User{}, ErrUserNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// TouchLastLogin stamps ultimo_login after a successful credential check.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET ultimo_login=NOW() WHERE id=?", id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nombre, &u.Rol,
		&u.Telefono, &u.UltimoLogin, &u.EsActivo, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
