package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// CartFilter narrows cart listings.
type CartFilter struct {
	UserID string
	Status *domain.CartStatus
}

// CartRepository persists shopping carts.
type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	List(ctx context.Context, filter CartFilter, page domain.PageOptions) ([]domain.Cart, int64, error)
	// ReplaceProducts overwrites the product lines of an ACTIVE cart.
	ReplaceProducts(ctx context.Context, id string, products []domain.CartProduct) (*domain.Cart, error)
	// UpdateStatus moves a cart out of status from. ErrNotFound means the cart
	// is missing or no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.CartStatus) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a Postgres-backed implementation.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

var cartSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

const cartColumns = `id, user_id, status, products, created_at, updated_at`

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	if cart.Products == nil {
		cart.Products = []domain.CartProduct{}
	}
	products, err := json.Marshal(cart.Products)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO carts (user_id, status, products)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err = r.pool.QueryRow(ctx, query, cart.UserID, cart.Status, products).
		Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	return translatePgError(err)
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id=$1`
	return scanCart(r.pool.QueryRow(ctx, query, id))
}

func (r *cartRepository) List(ctx context.Context, filter CartFilter, page domain.PageOptions) ([]domain.Cart, int64, error) {
	page = page.Normalize()
	column, ok := cartSortColumns[page.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownSortField, page.SortBy)
	}

	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	args = append(args, page.Take, page.Skip())
	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total FROM carts WHERE %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		cartColumns, strings.Join(clauses, " AND "), column, page.Order, page.Order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translatePgError(err)
	}
	defer rows.Close()

	var total int64
	carts := make([]domain.Cart, 0)
	for rows.Next() {
		var (
			cart     domain.Cart
			products []byte
		)
		if err := rows.Scan(&cart.ID, &cart.UserID, &cart.Status, &products, &cart.CreatedAt, &cart.UpdatedAt, &total); err != nil {
			return nil, 0, translatePgError(err)
		}
		if err := json.Unmarshal(products, &cart.Products); err != nil {
			return nil, 0, err
		}
		carts = append(carts, cart)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translatePgError(err)
	}

	// COUNT(*) OVER() yields nothing for an empty page past the end.
	if len(carts) == 0 && page.Page > 1 {
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM carts WHERE %s`, strings.Join(clauses, " AND "))
		if err := r.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, translatePgError(err)
		}
	}
	return carts, total, nil
}

func (r *cartRepository) ReplaceProducts(ctx context.Context, id string, products []domain.CartProduct) (*domain.Cart, error) {
	if products == nil {
		products = []domain.CartProduct{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}

	query := `
        UPDATE carts SET products=$2, updated_at=NOW()
        WHERE id=$1 AND status='ACTIVE'
        RETURNING ` + cartColumns
	return scanCart(r.pool.QueryRow(ctx, query, id, payload))
}

func (r *cartRepository) UpdateStatus(ctx context.Context, id string, from, to domain.CartStatus) (*domain.Cart, error) {
	query := `
        UPDATE carts SET status=$3, updated_at=NOW()
        WHERE id=$1 AND status=$2
        RETURNING ` + cartColumns
	return scanCart(r.pool.QueryRow(ctx, query, id, from, to))
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var (
		cart     domain.Cart
		products []byte
	)
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.Status, &products, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, translatePgError(err)
	}
	if err := json.Unmarshal(products, &cart.Products); err != nil {
		return nil, err
	}
	return &cart, nil
}
