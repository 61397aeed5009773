package endpoint

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakibhasan/carebook/scheduler"
	"github.com/rakibhasan/carebook/util"
)

// MonthlyReports godoc
// @Summary      Per-doctor monthly reports (admin only)
// @Description  Appointment totals, completions, cancellations, distinct patients and earnings per doctor for a month. Defaults to the previous month.
// @Tags         Report
// @Produce      json
// @Security     SessionToken
// @Param        month query string false "Month in YYYY-MM format"
// @Success      200 {object} util.APIResponse{data=object} "Reports retrieved"
// @Failure      400 {object} util.APIResponse "Invalid month"
// @Router       /report/monthly [get]
func MonthlyReports(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	now := time.Now()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid month, expected YYYY-MM", Err: err})
			return
		}
		month = parsed
	}

	reports, err := scheduler.MonthlyReports(db, month)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to aggregate reports", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Monthly reports retrieved",
		Data: map[string]interface{}{
			"month":   month.Format("2006-01"),
			"reports": reports,
		},
	})
}
