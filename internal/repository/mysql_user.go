package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/karantec/EcommerceMern/internal/entity"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db}
}

var _ UserRepository = (*MySQLUserRepository)(nil)

func (r *MySQLUserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (name, email, password, is_admin) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.Password, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	user.ID = int(id)
	return user, nil
}

func (r *MySQLUserRepository) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, name, email, password, is_admin FROM users WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *MySQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, name, email, password, is_admin FROM users WHERE email = ?`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
