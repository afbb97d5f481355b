package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/employee-management/internal/dashboard"
)

const totalsQuery = `
SELECT
  (SELECT COUNT(*) FROM companies)   AS total_companies,
  (SELECT COUNT(*) FROM departments) AS total_departments,
  (SELECT COUNT(*) FROM employees)   AS total_employees
`

type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) dashboard.Repository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Totals(ctx context.Context) (dashboard.Totals, error) {
	var t dashboard.Totals
	if err := r.db.GetContext(ctx, &t, totalsQuery); err != nil {
		return dashboard.Totals{}, fmt.Errorf("dashboard totals query: %w", err)
	}
	return t, nil
}
