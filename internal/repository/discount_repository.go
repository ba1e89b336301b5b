package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// DiscountFilter narrows discount listings.
type DiscountFilter struct {
	Active *bool
	Search string
}

// DiscountRepository persists discount codes.
type DiscountRepository interface {
	Create(ctx context.Context, discount *domain.Discount) error
	GetByID(ctx context.Context, id string) (*domain.Discount, error)
	GetByCode(ctx context.Context, code string) (*domain.Discount, error)
	List(ctx context.Context, filter DiscountFilter, page domain.PageOptions) ([]domain.Discount, int64, error)
	Update(ctx context.Context, discount *domain.Discount) error
	Delete(ctx context.Context, id string) error
}

type discountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a Postgres-backed implementation.
func NewDiscountRepository(pool *pgxpool.Pool) DiscountRepository {
	return &discountRepository{pool: pool}
}

var discountSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"code":      "code",
	"percent":   "percent",
}

const discountColumns = `id, code, description, percent, active, starts_at, ends_at, created_at, updated_at`

func (r *discountRepository) Create(ctx context.Context, d *domain.Discount) error {
	const query = `
        INSERT INTO discounts (code, description, percent, active, starts_at, ends_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, d.Code, d.Description, d.Percent, d.Active, d.StartsAt, d.EndsAt).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return translatePgError(err)
}

func (r *discountRepository) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE id=$1`
	return scanDiscount(r.pool.QueryRow(ctx, query, id))
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE code=$1`
	return scanDiscount(r.pool.QueryRow(ctx, query, domain.NormalizeDiscountCode(code)))
}

func (r *discountRepository) List(ctx context.Context, filter DiscountFilter, page domain.PageOptions) ([]domain.Discount, int64, error) {
	page = page.Normalize()
	column, ok := discountSortColumns[page.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownSortField, page.SortBy)
	}

	clauses := []string{"1=1"}
	args := []any{}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active=$%d", len(args)))
	}
	term := strings.TrimSpace(filter.Search)
	if term == "" {
		term = page.Search
	}
	if term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		clauses = append(clauses, fmt.Sprintf("(code ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM discounts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, translatePgError(err)
	}

	args = append(args, page.Take, page.Skip())
	query := fmt.Sprintf(`SELECT %s FROM discounts WHERE %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		discountColumns, where, column, page.Order, page.Order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translatePgError(err)
	}
	defer rows.Close()

	discounts := make([]domain.Discount, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, 0, err
		}
		discounts = append(discounts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translatePgError(err)
	}
	return discounts, total, nil
}

func (r *discountRepository) Update(ctx context.Context, d *domain.Discount) error {
	const query = `
        UPDATE discounts
        SET code=$2, description=$3, percent=$4, active=$5, starts_at=$6, ends_at=$7, updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, d.ID, d.Code, d.Description, d.Percent, d.Active, d.StartsAt, d.EndsAt).
		Scan(&d.UpdatedAt)
	return translatePgError(err)
}

func (r *discountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discounts WHERE id=$1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDiscount(row pgx.Row) (*domain.Discount, error) {
	var d domain.Discount
	if err := row.Scan(&d.ID, &d.Code, &d.Description, &d.Percent, &d.Active, &d.StartsAt, &d.EndsAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, translatePgError(err)
	}
	return &d, nil
}
