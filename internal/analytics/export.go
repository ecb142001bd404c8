package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// Exportable metric names.
const (
	ExportTrends       = "trends"
	ExportLocations    = "locations"
	ExportTours        = "tours"
	ExportDemographics = "demographics"
)

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatTrendsCSV renders the monthly trend rows. Growth rate is not part of
// the trends payload, so it defaults to 0.
func FormatTrendsCSV(data *TrendsResponse) ([]byte, error) {
	rows := [][]string{{"Month", "Year", "Bookings", "Growth Rate"}}
	for _, t := range data.Trends {
		rows = append(rows, []string{
			t.MonthName,
			strconv.Itoa(t.Year),
			strconv.FormatInt(t.Bookings, 10),
			percent(0),
		})
	}
	return writeCSV(rows)
}

// FormatLocationsCSV renders the popular-location ranking. Percentage is not
// supplied upstream and defaults to 0.
func FormatLocationsCSV(data *PopularLocationsResponse) ([]byte, error) {
	rows := [][]string{{"Location ID", "Location Name", "Country", "Region", "Booking Count", "Percentage"}}
	for _, l := range data.PopularLocations {
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.Name,
			l.Country,
			l.Region,
			strconv.FormatInt(l.BookingCount, 10),
			percent(0),
		})
	}
	return writeCSV(rows)
}

// FormatToursCSV renders the popular-tour ranking.
func FormatToursCSV(data *PopularToursResponse) ([]byte, error) {
	rows := [][]string{{"Tour ID", "Tour Name", "Country", "Region", "Booking Count", "Percentage"}}
	for _, t := range data.PopularTours {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Name,
			t.Country,
			t.Region,
			strconv.FormatInt(t.BookingCount, 10),
			percent(0),
		})
	}
	return writeCSV(rows)
}

// FormatDemographicsCSV renders age-group rows then country rows under a
// shared (Type, Category, Count, Percentage) header. Percentages are the
// share of bookings within each row group.
func FormatDemographicsCSV(data *DemographicsResponse) ([]byte, error) {
	rows := [][]string{{"Demographic Type", "Category", "Count", "Percentage"}}

	var ageTotal int64
	for _, g := range data.AgeDistribution {
		ageTotal += g.BookingCount
	}
	for _, g := range data.AgeDistribution {
		share := 0.0
		if ageTotal > 0 {
			share = float64(g.BookingCount) / float64(ageTotal) * 100
		}
		rows = append(rows, []string{
			"Age Group",
			g.AgeGroup,
			strconv.FormatInt(g.BookingCount, 10),
			percent(share),
		})
	}

	var countryTotal int64
	for _, c := range data.CountryDistribution {
		countryTotal += c.TotalBookings
	}
	for _, c := range data.CountryDistribution {
		share := 0.0
		if countryTotal > 0 {
			share = float64(c.TotalBookings) / float64(countryTotal) * 100
		}
		rows = append(rows, []string{
			"Country",
			c.Country,
			strconv.FormatInt(c.TotalBookings, 10),
			percent(share),
		})
	}

	return writeCSV(rows)
}
