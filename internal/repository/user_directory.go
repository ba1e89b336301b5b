package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// DirectoryFilter holds the exact-match predicates of a directory query.
// Search is a case-insensitive substring match on name or email.
type DirectoryFilter struct {
	ID               string
	Email            string
	VerificationCode string
	Role             *domain.UserRole
	Status           *domain.UserStatus
	Search           string
}

// DirectoryQuery combines a filter with an optional page. A nil Page returns
// the first matching user and the full match count.
type DirectoryQuery struct {
	Filter DirectoryFilter
	Page   *domain.PageOptions
}

// sortColumns whitelists sortable fields. Text fields sort with the
// case-insensitive collation created by the users migration.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name COLLATE directory_ci",
	"email":     "email COLLATE directory_ci",
}

// IsSortable reports whether field may be used as a directory sort key.
func IsSortable(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func (f DirectoryFilter) whereClause(args []any) (string, []any) {
	clauses := []string{}
	if f.ID != "" {
		args = append(args, f.ID)
		clauses = append(clauses, fmt.Sprintf("id=$%d", len(args)))
	}
	if f.Email != "" {
		args = append(args, domain.NormalizeEmail(f.Email))
		clauses = append(clauses, fmt.Sprintf("email=$%d", len(args)))
	}
	if f.VerificationCode != "" {
		args = append(args, f.VerificationCode)
		clauses = append(clauses, fmt.Sprintf("verification_code=$%d", len(args)))
	}
	if f.Role != nil {
		args = append(args, string(*f.Role))
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildDirectoryQuery renders the filter, count, page, and role decoration as
// one statement so the total and the page read the same snapshot. Every
// returned row carries the total; an empty page yields one row with NULL
// page columns.
func buildDirectoryQuery(q DirectoryQuery) (string, []any, error) {
	filter := q.Filter
	var opts domain.PageOptions
	if q.Page == nil {
		opts = domain.PageOptions{Page: 1, Take: 1, Order: domain.OrderDesc, SortBy: "createdAt"}
	} else {
		opts = q.Page.Normalize()
		if opts.Search != "" {
			filter.Search = opts.Search
		}
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownSortField, opts.SortBy)
	}
	direction := "DESC"
	if opts.Order == domain.OrderAsc {
		direction = "ASC"
	}
	orderBy := fmt.Sprintf("%s %s, id %s", column, direction, direction)

	where, args := filter.whereClause(nil)
	args = append(args, opts.Take, opts.Skip())
	limitPos, offsetPos := len(args)-1, len(args)

	query := fmt.Sprintf(`
        WITH filtered AS (
            SELECT id, name, email, role, status, created_at, updated_at
            FROM users%s
        ),
        page AS (
            SELECT filtered.*, ROW_NUMBER() OVER (ORDER BY %s) AS rn
            FROM filtered
            ORDER BY %s
            LIMIT $%d OFFSET $%d
        )
        SELECT t.total, p.id, p.name, p.email, p.role, p.status, p.created_at, p.updated_at,
               p.role = 'MANAGER' AS is_manager, p.role = 'SUPERUSER' AS is_superuser
        FROM (SELECT COUNT(*) AS total FROM filtered) t
        LEFT JOIN page p ON TRUE
        ORDER BY p.rn`, where, orderBy, orderBy, limitPos, offsetPos)

	return query, args, nil
}

func (r *userRepository) Directory(ctx context.Context, q DirectoryQuery) (*domain.DirectoryPage, error) {
	query, args, err := buildDirectoryQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	var total int64
	data := make([]domain.DirectoryUser, 0)
	for rows.Next() {
		var (
			id, name, email, role, status *string
			createdAt, updatedAt          *time.Time
			isManager, isSuperuser        *bool
		)
		if err := rows.Scan(&total, &id, &name, &email, &role, &status, &createdAt, &updatedAt, &isManager, &isSuperuser); err != nil {
			return nil, translatePgError(err)
		}
		if id == nil {
			continue
		}
		data = append(data, domain.DirectoryUser{
			ID:          *id,
			Name:        *name,
			Email:       *email,
			Role:        domain.UserRole(*role),
			Status:      domain.UserStatus(*status),
			CreatedAt:   *createdAt,
			UpdatedAt:   *updatedAt,
			IsManager:   *isManager,
			IsSuperuser: *isSuperuser,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}

	var meta domain.PageMeta
	if q.Page == nil {
		meta = domain.NewPageMeta(total, nil)
	} else {
		opts := q.Page.Normalize()
		meta = domain.NewPageMeta(total, &opts)
	}
	return &domain.DirectoryPage{Data: data, Metadata: meta}, nil
}
