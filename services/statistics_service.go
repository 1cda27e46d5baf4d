package services

import (
	"context"
	"time"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/models"
	"github.com/ecoreport/api-go/policy"
	"github.com/ecoreport/api-go/types"
	"gorm.io/gorm"
)

// StatisticsMonths is how many calendar months, including the current one,
// the monthly series covers.
const StatisticsMonths = 6

type StatisticsService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewStatisticsService(db *gorm.DB) *StatisticsService {
	return &StatisticsService{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

type groupCount struct {
	Label string
	Total int64
}

// Compute builds the admin dashboard rollup.
func (s *StatisticsService) Compute(ctx context.Context, caller auth.Identity) (*types.Statistics, error) {
	if err := policy.RequireAdmin(caller); err != nil {
		return nil, ErrAdminRequired
	}
	db := s.DB.WithContext(ctx)

	stats := &types.Statistics{
		ByStatus: make(map[string]int64, len(models.Statuses)),
		ByType:   map[string]int64{},
	}
	if err := db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}

	for _, status := range models.Statuses {
		stats.ByStatus[status] = 0
	}
	var byStatus []groupCount
	if err := db.Model(&models.Report{}).
		Select("status AS label, COUNT(id) AS total").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		if _, ok := stats.ByStatus[row.Label]; ok {
			stats.ByStatus[row.Label] = row.Total
		}
	}

	var byType []groupCount
	if err := db.Model(&models.Report{}).
		Select("type AS label, COUNT(id) AS total").
		Group("type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, row := range byType {
		stats.ByType[row.Label] = row.Total
	}

	window := MonthWindow(s.Now(), StatisticsMonths)
	start := time.Date(window[0].Year, time.Month(window[0].Month), 1, 0, 0, 0, 0, time.UTC)

	year, month := monthParts(s.DB.Dialector.Name())
	var byMonth []monthCount
	if err := db.Model(&models.Report{}).
		Select(year + " AS bucket_year, " + month + " AS bucket_month, COUNT(id) AS total").
		Where("created_at >= ?", start).
		Group("bucket_year, bucket_month").
		Scan(&byMonth).Error; err != nil {
		return nil, err
	}
	stats.MonthlyData = fillMonths(window, byMonth)

	return stats, nil
}

// MonthWindow returns the n calendar months ending with the month of now,
// oldest first, each with a zero count. Year boundaries roll over, so a
// February window reaches back into the previous year.
func MonthWindow(now time.Time, n int) []types.MonthlyCount {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]types.MonthlyCount, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, -(n - 1 - i), 0)
		months[i] = types.MonthlyCount{Year: m.Year(), Month: int(m.Month())}
	}
	return months
}

type monthCount struct {
	BucketYear  int
	BucketMonth int
	Total       int64
}

// monthParts returns SQL expressions for the UTC calendar year and month of
// created_at in the given gorm dialect.
func monthParts(dialect string) (year, month string) {
	if dialect == "sqlite" {
		return "CAST(strftime('%Y', created_at) AS INTEGER)", "CAST(strftime('%m', created_at) AS INTEGER)"
	}
	return "CAST(EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC') AS INTEGER)",
		"CAST(EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC') AS INTEGER)"
}

// fillMonths copies grouped counts into the zero-filled window. Rows outside
// the window are ignored.
func fillMonths(window []types.MonthlyCount, rows []monthCount) []types.MonthlyCount {
	index := make(map[int]int, len(window))
	for i, m := range window {
		index[m.Year*100+m.Month] = i
	}
	for _, row := range rows {
		if i, ok := index[row.BucketYear*100+row.BucketMonth]; ok {
			window[i].Count += row.Total
		}
	}
	return window
}
