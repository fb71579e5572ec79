package analytics

import (
	"context"
	"database/sql"
)

// Service runs the four hand-crafted analytics queries against the
// read-only reference store. Each method is a single query; rows come back
// already shaped and ordered, there is no post-processing.
type Service struct {
	db *sql.DB
}

func NewService(database *sql.DB) Service {
	return Service{db: database}
}

type CategoryPath struct {
	N1 string
	N2 *string
	N3 *string
}

// Every node appears on a row of its own with the deeper columns null, in
// addition to the rows for its descendants, so the three depths are
// projected separately and unioned. A LEFT JOIN chain cannot do this: it
// null-extends a parent only when the parent has no children at all.
const categoryTreeQuery = `
SELECT
    c1.name AS n1,
    NULL AS n2,
    NULL AS n3
FROM categories c1
WHERE c1.parent_category_id IS NULL

UNION ALL

SELECT
    c1.name,
    c2.name,
    NULL
FROM categories c1
JOIN categories c2 ON c2.parent_category_id = c1.id
WHERE c1.parent_category_id IS NULL

UNION ALL

SELECT
    c1.name,
    c2.name,
    c3.name
FROM categories c1
JOIN categories c2 ON c2.parent_category_id = c1.id
JOIN categories c3 ON c3.parent_category_id = c2.id
WHERE c1.parent_category_id IS NULL

ORDER BY n1, n2, n3
`

// CategoryTree flattens the category hierarchy (at most 3 levels deep) into
// one row per node at its own depth, deeper columns null. Ascending by
// (n1, n2, n3); sqlite sorts nulls before values under ASC, which is the
// ordering the exercise wants.
func (s Service) CategoryTree(ctx context.Context) ([]CategoryPath, error) {
	rows, err := s.db.QueryContext(ctx, categoryTreeQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryPath
	for rows.Next() {
		var row CategoryPath
		err := rows.Scan(&row.N1, &row.N2, &row.N3)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

type CategoryProducts struct {
	Category string
	Products int64
}

const categoryProductsQuery = `
WITH RECURSIVE descendants AS (
    SELECT id AS top_id, name AS top_name, id
    FROM categories
    WHERE parent_category_id IS NULL

    UNION ALL

    SELECT d.top_id, d.top_name, c.id
    FROM categories c
    JOIN descendants d ON c.parent_category_id = d.id
)
SELECT
    d.top_name AS category,
    COUNT(p.id) AS products
FROM descendants d
LEFT JOIN products p ON p.category_id = d.id
GROUP BY d.top_id
ORDER BY products DESC, category ASC
`

// CategoryProductCounts returns every top-level category with the number of
// products contained in it or any of its descendants. Top-level categories
// with no products still appear with a count of 0. Most products first;
// equal counts break ties by category name since the store itself gives no
// deterministic order.
func (s Service) CategoryProductCounts(ctx context.Context) ([]CategoryProducts, error) {
	rows, err := s.db.QueryContext(ctx, categoryProductsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryProducts
	for rows.Next() {
		var row CategoryProducts
		err := rows.Scan(&row.Category, &row.Products)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

type OrderTotal struct {
	ID       string
	Employee string
	SubTotal int64
	Tax      int64
	Total    int64
}

// The 5% tax applies to items whose product is not tax exempt, and the
// floor is taken per item before summation. CAST truncates toward zero,
// which is floor for the non-negative amounts in the store. Both queries
// below must compute totals identically.
const orderTotalsQuery = `
SELECT
    o.id AS id,
    e.first_name || ' ' || e.last_name AS employee,
    SUM(i.quantity * p.unit_price) AS sub_total,
    SUM(CAST(i.quantity * p.unit_price * 0.05 AS INTEGER) * (1 - p.is_tax_exempt)) AS tax,
    SUM(i.quantity * p.unit_price
        + CAST(i.quantity * p.unit_price * 0.05 AS INTEGER) * (1 - p.is_tax_exempt)) AS total
FROM orders o
JOIN employees e ON e.id = o.created_by
JOIN items i ON i.order_id = o.id
JOIN products p ON p.id = i.product_id
GROUP BY o.id
ORDER BY total DESC, o.id ASC
LIMIT 100
`

// TopOrders returns the 100 highest-value orders with a sub_total/tax/total
// breakdown in integer cents and the full name of the employee that placed
// each one. Ties on total break by order id.
func (s Service) TopOrders(ctx context.Context) ([]OrderTotal, error) {
	rows, err := s.db.QueryContext(ctx, orderTotalsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OrderTotal
	for rows.Next() {
		var row OrderTotal
		err := rows.Scan(&row.ID, &row.Employee, &row.SubTotal, &row.Tax, &row.Total)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

type CompanyRevenue struct {
	Company string
	Total   int64
}

// created_at is a unix epoch integer; strftime('%s', ...) interprets its
// arguments in UTC, so the year boundary is the UTC one.
const companyRevenueQuery = `
SELECT
    c.name AS company,
    SUM(i.quantity * p.unit_price
        + CAST(i.quantity * p.unit_price * 0.05 AS INTEGER) * (1 - p.is_tax_exempt)) AS total
FROM orders o
JOIN employees e ON e.id = o.created_by
JOIN companies c ON c.id = e.company_id
JOIN items i ON i.order_id = o.id
JOIN products p ON p.id = i.product_id
WHERE o.created_at >= CAST(strftime('%s', '2022-01-01 00:00:00') AS INTEGER)
  AND o.created_at < CAST(strftime('%s', '2023-01-01 00:00:00') AS INTEGER)
GROUP BY c.id
ORDER BY total DESC, c.id ASC
`

// CompanyRevenue2022 sums the totals of all orders placed during UTC 2022
// by each company's employees, highest revenue first, ties broken by
// company id. Order totals follow the same rule as TopOrders; summing the
// per-item amounts directly is equivalent since totals are additive over
// items.
func (s Service) CompanyRevenue2022(ctx context.Context) ([]CompanyRevenue, error) {
	rows, err := s.db.QueryContext(ctx, companyRevenueQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CompanyRevenue
	for rows.Next() {
		var row CompanyRevenue
		err := rows.Scan(&row.Company, &row.Total)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
