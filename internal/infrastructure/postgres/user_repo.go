package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
)

const userColumns = `id, first_name, last_name, email, password, phone_number, city,
	cin_number, role_id, verified_at, agents, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmailOrPhoneOrCIN(ctx context.Context, email, phoneNumber, cinNumber string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR phone_number = $2 OR cin_number = $3
		LIMIT 1`

	return scanUser(r.pool.QueryRow(ctx, query, email, phoneNumber, cinNumber))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (
			first_name, last_name, email, password, phone_number,
			city, cin_number, role_id, agents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Password,
		u.PhoneNumber,
		u.City,
		u.CINNumber,
		u.RoleID,
		agentsOrEmpty(u.Agents),
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		// a malformed id can't match any row
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresent {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// Save overwrites the mutable fields without a version check, so concurrent
// read-modify-write cycles on the same user can drop an agent append.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET    password    = $2,
		       verified_at = $3,
		       agents      = $4,
		       updated_at  = NOW()
		WHERE  id = $1
		RETURNING updated_at`,
		u.ID, u.Password, u.VerifiedAt, agentsOrEmpty(u.Agents),
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func agentsOrEmpty(agents []domain.Agent) []domain.Agent {
	if agents == nil {
		return []domain.Agent{}
	}
	return agents
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.PhoneNumber, &u.City,
		&u.CINNumber, &u.RoleID, &u.VerifiedAt, &u.Agents, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
