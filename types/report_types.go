package types

type CreateReportRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Address     *string  `json:"address"`
}

// ReportFilter narrows GET /reports. Empty values mean "no filter"; set
// values match exactly and are ANDed.
type ReportFilter struct {
	Status string `form:"status"`
	Type   string `form:"type"`
}
