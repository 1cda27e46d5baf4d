package controllers

import (
	"net/http"

	"github.com/ecoreport/api-go/services"
	"github.com/ecoreport/api-go/utils"
	"github.com/gin-gonic/gin"
)

type StatisticsController struct {
	Statistics *services.StatisticsService
}

func NewStatisticsController(stats *services.StatisticsService) *StatisticsController {
	return &StatisticsController{Statistics: stats}
}

func (sc *StatisticsController) GetStatistics(c *gin.Context) {
	identity, ok := utils.GetIdentity(c)
	if !ok {
		respondNoIdentity(c)
		return
	}

	stats, err := sc.Statistics.Compute(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
