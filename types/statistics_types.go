package types

type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type Statistics struct {
	TotalReports int64            `json:"total_reports"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByType       map[string]int64 `json:"by_type"`
	MonthlyData  []MonthlyCount   `json:"monthly_data"`
}
