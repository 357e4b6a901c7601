package store

import "context"

// AdminStats is the dashboard summary block.
type AdminStats struct {
	TotalStudents     int `json:"totalStudents"`
	VerifiedEmployers int `json:"verifiedEmployers"`
	RejectedEmployers int `json:"rejectedEmployers"`
	ActiveJobs        int `json:"activeJobs"`
	ClosedJobs        int `json:"closedJobs"`
	BronzeEmployers   int `json:"bronze"`
	GoldEmployers     int `json:"gold"`
	PlatinumEmployers int `json:"platinum"`
}

// GetAdminStats computes the dashboard counters in one round trip.
func (s *Store) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_students,
			(SELECT COUNT(*) FROM employers WHERE is_address_verified = 1) AS verified_employers,
			(SELECT COUNT(*) FROM employers WHERE is_address_verified = 2) AS rejected_employers,
			(SELECT COUNT(*) FROM jobs WHERE status = 'Active') AS active_jobs,
			(SELECT COUNT(*) FROM jobs WHERE status = 'Closed') AS closed_jobs,
			(SELECT COUNT(*) FROM employers WHERE LOWER(current_plan) = 'bronze') AS bronze,
			(SELECT COUNT(*) FROM employers WHERE LOWER(current_plan) = 'gold') AS gold,
			(SELECT COUNT(*) FROM employers WHERE LOWER(current_plan) = 'platinum') AS platinum`

	var stats AdminStats
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalStudents,
		&stats.VerifiedEmployers,
		&stats.RejectedEmployers,
		&stats.ActiveJobs,
		&stats.ClosedJobs,
		&stats.BronzeEmployers,
		&stats.GoldEmployers,
		&stats.PlatinumEmployers,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
