package services

import (
	"context"

	"github.com/diewo77/erp-reports/internal/models"
)

// ReportStats counts runs per report.
type ReportStats struct {
	Report   string
	Runs     int64
	Failures int64
}

// RecentRuns returns the latest runs, newest first.
func (s *ReportService) RecentRuns(ctx context.Context, limit int) ([]models.ReportRun, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var runs []models.ReportRun
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}

// Stats returns run and failure counts per report, keyed by report name.
func (s *ReportService) Stats(ctx context.Context) (map[string]ReportStats, error) {
	out := map[string]ReportStats{}
	if s.db == nil {
		return out, nil
	}
	var rows []ReportStats
	err := s.db.WithContext(ctx).Model(&models.ReportRun{}).
		Select("report, count(*) as runs, sum(case when status = ? then 1 else 0 end) as failures", models.RunError).
		Group("report").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.Report] = r
	}
	return out, nil
}
