// Package display formats engine results for metric cards and charts.
package display

import (
	"math"

	"salarydash/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Chart keys used in DashboardData.Charts.
const (
	ChartTopRoles     = "top_roles"
	ChartDistribution = "distribution"
	ChartRemoteShare  = "remote_share"
	ChartCountryMeans = "country_means"
)

var printer = message.NewPrinter(language.English)

// Currency renders whole dollars with thousands separators, e.g. "$120,000".
func Currency(v float64) string {
	return printer.Sprintf("$%d", int64(math.Round(v)))
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Percent renders a fraction as a whole percentage, e.g. "42%".
func Percent(f float64) string {
	return printer.Sprintf("%d%%", int64(math.Round(f*100)))
}

// KPI formats the headline metrics for display.
func KPI(k models.KPI) models.KPIDisplay {
	return models.KPIDisplay{
		MeanSalary:       Currency(k.MeanSalary),
		MaxSalary:        Currency(k.MaxSalary),
		RecordCount:      Count(k.RecordCount),
		MostFrequentRole: k.MostFrequentRole,
	}
}

// Charts returns titles, axis labels and an empty-state message for every
// chart whose data set is empty.
func Charts(d *models.DashboardData, focusRole string) map[string]models.Chart {
	charts := map[string]models.Chart{
		ChartTopRoles: {
			Title:  "Top 10 roles by mean salary",
			Labels: map[string]string{"mean_salary": "Mean annual salary (USD)", "role": ""},
		},
		ChartDistribution: {
			Title:  "Annual salary distribution",
			Labels: map[string]string{"salary_usd": "Salary range (USD)", "count": ""},
		},
		ChartRemoteShare: {
			Title: "Work arrangement share",
		},
		ChartCountryMeans: {
			Title:  "Mean " + focusRole + " salary by country",
			Labels: map[string]string{"mean_salary": "Mean salary (USD)", "residence_country_code": "Country"},
		},
	}
	empty := map[string]bool{
		ChartTopRoles:     len(d.TopRoles) == 0,
		ChartDistribution: len(d.Distribution) == 0,
		ChartRemoteShare:  len(d.RemoteShare) == 0,
		ChartCountryMeans: len(d.CountryMeans) == 0,
	}
	for key, isEmpty := range empty {
		if isEmpty {
			c := charts[key]
			c.Empty = "No data to display for this chart."
			charts[key] = c
		}
	}
	return charts
}

// Decorate fills the display-only fields of d in place.
func Decorate(d *models.DashboardData, focusRole string) *models.DashboardData {
	d.KPIDisplay = KPI(d.KPI)
	d.Charts = Charts(d, focusRole)
	return d
}
