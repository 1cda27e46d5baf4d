package controllers

import (
	"net/http"

	"github.com/ecoreport/api-go/services"
	"github.com/ecoreport/api-go/types"
	"github.com/ecoreport/api-go/utils"
	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{Reports: reports}
}

// ListReports godoc
// @Summary List reports visible to the caller
// @Description Admins see every report, other users only their own. Optional exact-match filters.
// @Tags reports
// @Produce json
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Success 200 {array} models.Report
// @Router /reports [get]
func (rc *ReportController) ListReports(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}

	var filter types.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	reports, err := rc.Reports.List(c.Request.Context(), identity, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (rc *ReportController) GetReport(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	reportID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "report")
		return
	}

	report, err := rc.Reports.Get(c.Request.Context(), identity, reportID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CreateReport godoc
// @Summary Submit a new complaint report
// @Tags reports
// @Accept json
// @Produce json
// @Param report body types.CreateReportRequest true "Report"
// @Success 201 {object} models.Report
// @Router /reports [post]
func (rc *ReportController) CreateReport(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}

	var req types.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := rc.Reports.Create(c.Request.Context(), identity, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// UpdateReport godoc
// @Summary Update a report
// @Description Owners may change title, description, type, latitude, longitude and address. Admins may also change status. Other fields are ignored.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} models.Report
// @Router /reports/{id} [put]
func (rc *ReportController) UpdateReport(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	reportID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "report")
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := rc.Reports.Update(c.Request.Context(), identity, reportID, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (rc *ReportController) DeleteReport(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}
	reportID, ok := utils.ParamID(c, "id")
	if !ok {
		respondBadID(c, "report")
		return
	}

	if err := rc.Reports.Delete(c.Request.Context(), identity, reportID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Report deleted successfully"})
}
