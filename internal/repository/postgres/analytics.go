package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/repository"
)

type analyticsRepository struct {
	*BaseRepository
}

func NewAnalyticsRepository(base *BaseRepository) repository.AnalyticsRepository {
	return &analyticsRepository{BaseRepository: base}
}

// allowed tables for status aggregation, keyed to prevent injection through
// the table argument.
var statusTables = map[string]bool{
	"appointments":    true,
	"consultations":   true,
	"referrals":       true,
	"follow_up_tasks": true,
}

func (r *analyticsRepository) CountsByStatus(ctx context.Context, clinicID uuid.UUID, table string) (map[string]int, error) {
	if !statusTables[table] {
		return nil, fmt.Errorf("unsupported analytics table: %s", table)
	}

	col := "status"
	if table == "follow_up_tasks" {
		col = "CASE WHEN is_completed THEN 'completed' ELSE 'open' END"
	}

	query := fmt.Sprintf(`
		SELECT %s AS status, COUNT(*) AS count
		FROM %s
		WHERE clinic_id = $1
		GROUP BY 1
	`, col, table)

	rows, err := r.db.QueryxContext(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s by status: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *analyticsRepository) AppointmentsPerDay(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (map[string]int, error) {
	query := `
		SELECT date, COUNT(*) AS count
		FROM appointments
		WHERE clinic_id = $1 AND date >= $2 AND date <= $3
		GROUP BY date
		ORDER BY date ASC
	`
	rows, err := r.db.QueryxContext(ctx, query, clinicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments per day: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		counts[day.Format("2006-01-02")] = count
	}
	return counts, rows.Err()
}
