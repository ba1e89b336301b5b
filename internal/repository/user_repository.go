package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// UserLookup selects a single user by one or more exact-match fields.
type UserLookup struct {
	ID               string
	Email            string
	VerificationCode string
	Role             *domain.UserRole
}

// Empty reports whether no field is set.
func (l UserLookup) Empty() bool {
	return l.ID == "" && l.Email == "" && l.VerificationCode == "" && l.Role == nil
}

// UserPatch carries the mutable profile fields of an account.
type UserPatch struct {
	Name *string
	Role *domain.UserRole
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindOne(ctx context.Context, lookup UserLookup) (*domain.User, error)
	// TransitionStatus moves a user from one status to another in a single
	// conditional update and stores the new verification code.
	TransitionStatus(ctx context.Context, id string, from, to domain.UserStatus, verificationCode string) (*domain.User, error)
	// Activate stores the password hash and marks an IN_ACTIVE user ACTIVE.
	Activate(ctx context.Context, id, passwordHash string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
	Directory(ctx context.Context, query DirectoryQuery) (*domain.DirectoryPage, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, status, verification_code, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, status, verification_code)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.VerificationCode,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translatePgError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.FindOne(ctx, UserLookup{ID: id})
}

func (r *userRepository) FindOne(ctx context.Context, lookup UserLookup) (*domain.User, error) {
	if lookup.Empty() {
		return nil, ErrNotFound
	}

	clauses := []string{}
	args := []any{}
	if lookup.ID != "" {
		args = append(args, lookup.ID)
		clauses = append(clauses, fmt.Sprintf("id=$%d", len(args)))
	}
	if lookup.Email != "" {
		args = append(args, lookup.Email)
		clauses = append(clauses, fmt.Sprintf("email=$%d", len(args)))
	}
	if lookup.VerificationCode != "" {
		args = append(args, lookup.VerificationCode)
		clauses = append(clauses, fmt.Sprintf("verification_code=$%d", len(args)))
	}
	if lookup.Role != nil {
		args = append(args, *lookup.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s LIMIT 1`, userColumns, strings.Join(clauses, " AND "))
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *userRepository) TransitionStatus(ctx context.Context, id string, from, to domain.UserStatus, verificationCode string) (*domain.User, error) {
	const query = `
        UPDATE users SET status=$3, verification_code=$4, updated_at=NOW()
        WHERE id=$1 AND status=$2
        RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id, from, to, verificationCode))
}

func (r *userRepository) Activate(ctx context.Context, id, passwordHash string) (*domain.User, error) {
	const query = `
        UPDATE users SET password_hash=$2, status='ACTIVE', updated_at=NOW()
        WHERE id=$1 AND status='IN_ACTIVE'
        RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id, passwordHash))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	const query = `
        UPDATE users SET name=COALESCE($2, name), role=COALESCE($3, role), updated_at=NOW()
        WHERE id=$1
        RETURNING ` + userColumns

	var role *string
	if patch.Role != nil {
		value := string(*patch.Role)
		role = &value
	}
	return scanUser(r.pool.QueryRow(ctx, query, id, patch.Name, role))
}

func (r *userRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	const query = `DELETE FROM users WHERE id=$1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.VerificationCode,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, translatePgError(err)
	}
	return &user, nil
}
