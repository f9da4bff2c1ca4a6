package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"salarydash/internal/display"
	"salarydash/internal/engine"
	"salarydash/internal/models"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var reportArgs struct {
	years       []string
	seniorities []string
	contracts   []string
	sizes       []string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard metrics for a selection to stdout",
	Long: "Loads the dataset once and prints KPIs, top roles, work arrangement shares and\n" +
		"per-country means. Omitted filters select every value; an empty filter (e.g. --year=) selects none.",
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringSliceVar(&reportArgs.years, "year", nil, "years to include")
	f.StringSliceVar(&reportArgs.seniorities, "seniority", nil, "seniority levels to include")
	f.StringSliceVar(&reportArgs.contracts, "contract-type", nil, "contract types to include")
	f.StringSliceVar(&reportArgs.sizes, "company-size", nil, "company sizes to include")
}

func runReport(cmd *cobra.Command, _ []string) error {
	store, err := engine.Load(cmd.Context(), cfg.Source())
	if err != nil {
		return err
	}

	sel := store.FilterOptions().Selection()
	f := cmd.Flags()
	if f.Changed("year") {
		years, err := parseYears(reportArgs.years)
		if err != nil {
			return err
		}
		sel.Years = years
	}
	if f.Changed("seniority") {
		sel.Seniorities = nonEmpty(reportArgs.seniorities)
	}
	if f.Changed("contract-type") {
		sel.ContractTypes = nonEmpty(reportArgs.contracts)
	}
	if f.Changed("company-size") {
		sel.CompanySizes = nonEmpty(reportArgs.sizes)
	}

	data := display.Decorate(store.Dashboard(sel, cfg.EngineOptions()), cfg.FocusRole)
	printReport(cmd.OutOrStdout(), data)
	return nil
}

func nonEmpty(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseYears(in []string) ([]int, error) {
	out := []int{}
	for _, s := range nonEmpty(in) {
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Errorf("invalid year %q", s)
		}
		out = append(out, y)
	}
	return out, nil
}

func printReport(w io.Writer, d *models.DashboardData) {
	sep := strings.Repeat("=", 54)
	thin := strings.Repeat("-", 54)

	fmt.Fprintf(w, "\n%s\n  SALARY DASHBOARD (annual salary, USD)\n%s\n\n", sep, sep)

	fmt.Fprintf(w, "  Overview\n  %s\n", thin)
	fmt.Fprintf(w, "  Mean salary        : %s\n", d.KPIDisplay.MeanSalary)
	fmt.Fprintf(w, "  Max salary         : %s\n", d.KPIDisplay.MaxSalary)
	fmt.Fprintf(w, "  Records            : %s\n", d.KPIDisplay.RecordCount)
	fmt.Fprintf(w, "  Most frequent role : %s\n\n", d.KPIDisplay.MostFrequentRole)

	section := func(key string) bool {
		c := d.Charts[key]
		fmt.Fprintf(w, "  %s\n  %s\n", c.Title, thin)
		if c.Empty != "" {
			fmt.Fprintf(w, "  %s\n\n", c.Empty)
			return false
		}
		return true
	}

	if section(display.ChartTopRoles) {
		// stored ascending for bar charts; print largest first
		for i := len(d.TopRoles) - 1; i >= 0; i-- {
			r := d.TopRoles[i]
			fmt.Fprintf(w, "  %-36s %12s\n", truncate(r.Role, 36), display.Currency(r.MeanSalary))
		}
		fmt.Fprintln(w)
	}

	if section(display.ChartRemoteShare) {
		for _, s := range d.RemoteShare {
			fmt.Fprintf(w, "  %-20s %6s (%s)\n", s.Value, display.Percent(s.Fraction), display.Count(s.Count))
		}
		fmt.Fprintln(w)
	}

	if section(display.ChartCountryMeans) {
		for _, c := range d.CountryMeans {
			fmt.Fprintf(w, "  %-6s %12s (%s)\n", c.Country, display.Currency(c.MeanSalary), display.Count(c.Count))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\n", sep)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
