package storage

import (
	"context"

	"fintrack/internal/core"
)

// ListCategories returns the categories for one domain in seed order.
// Defaults are inserted by migration with INSERT OR IGNORE against the
// UNIQUE(domain, name) constraint, so initializing the store repeatedly
// never duplicates a (domain, name) pair.
func (r *SQLiteRepository) ListCategories(ctx context.Context, domain core.CategoryDomain) ([]core.Category, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, domain, name, icon, sort_order
		FROM categories WHERE domain = ?
		ORDER BY sort_order, name`, string(domain))
	if err != nil {
		return nil, persistErr("list categories", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var (
			c core.Category
			d string
		)
		if err := rows.Scan(&c.ID, &d, &c.Name, &c.Icon, &c.SortOrder); err != nil {
			return nil, persistErr("scan category", err)
		}
		c.Domain = core.CategoryDomain(d)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list categories", err)
	}
	return cats, nil
}

// CategoryCount returns the total number of categories across domains.
func (r *SQLiteRepository) CategoryCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, persistErr("count categories", err)
	}
	return n, nil
}
