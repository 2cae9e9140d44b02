package chart

import (
	"time"

	"market-pulse/src/models"
	"market-pulse/src/utils"
)

// -----------------------------------------------------------------------------

// TimeWindow computes the x-axis domain for the intraday view, anchored on
// the calendar day of the NEWEST data point, never the viewer's wall clock.
// A stock chart opened on Saturday still frames Friday's session.
//
//   - crypto: midnight-to-midnight UTC of that day
//   - stocks: the regular exchange session (09:30-16:00 exchange local,
//     DST resolved by the exchange zone)
func TimeWindow(points []models.MSeriesPoint, assetType string, ticker string) *models.MTimeWindow {
	if len(points) == 0 {
		return nil
	}
	latest := points[len(points)-1].Timestamp

	if assetType == models.AssetCrypto {
		day := latest.UTC().Truncate(24 * time.Hour)
		return &models.MTimeWindow{
			Start: day,
			End:   day.Add(24 * time.Hour),
		}
	}

	cal := utils.GetCalendar(ticker)
	start, end := cal.SessionWindow(latest)
	return &models.MTimeWindow{Start: start, End: end}
}
