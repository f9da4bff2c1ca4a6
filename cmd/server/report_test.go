package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"salarydash/internal/display"
	"salarydash/internal/engine"
	"salarydash/internal/models"
)

func TestPrintReport(t *testing.T) {
	store := engine.FromRecords([]models.Record{
		{Year: 2023, Seniority: "Senior", ContractType: "CLT", CompanySize: "M", Role: "Data Scientist", RemoteType: "Remote", Country: "BRA", SalaryUSD: 120000},
		{Year: 2023, Seniority: "Junior", ContractType: "CLT", CompanySize: "M", Role: "Analyst", RemoteType: "Hybrid", Country: "USA", SalaryUSD: 60000},
	})
	sel := store.FilterOptions().Selection()
	data := display.Decorate(store.Dashboard(sel, engine.DefaultOptions()), engine.DefaultFocusRole)

	var buf bytes.Buffer
	printReport(&buf, data)
	out := buf.String()

	for _, want := range []string{"$90,000", "$120,000", "Data Scientist", "Remote", "50%", "BRA"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	// highest mean first
	roles := out[strings.Index(out, "Top 10"):strings.Index(out, "Work arrangement")]
	if strings.Index(roles, "Data Scientist") > strings.Index(roles, "Analyst") {
		t.Errorf("top roles should print largest first:\n%s", out)
	}
}

func TestPrintReportEmpty(t *testing.T) {
	store := engine.FromRecords(nil)
	data := display.Decorate(store.Dashboard(models.FilterSelection{}, engine.DefaultOptions()), engine.DefaultFocusRole)

	var buf bytes.Buffer
	printReport(&buf, data)
	if !strings.Contains(buf.String(), "No data to display") {
		t.Errorf("expected empty-state messages:\n%s", buf.String())
	}
}

func TestNonEmpty(t *testing.T) {
	got := nonEmpty([]string{" Senior ", "", "Junior"})
	if len(got) != 2 || got[0] != "Senior" || got[1] != "Junior" {
		t.Errorf("nonEmpty: %v", got)
	}
	if got := nonEmpty(nil); got == nil || len(got) != 0 {
		t.Errorf("nonEmpty(nil) should be an empty set, got %#v", got)
	}
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salaries.csv")
	csv := "ano,senioridade,contrato,tamanho_empresa,cargo,remoto,residencia_iso3,usd\n" +
		"2023,Senior,CLT,M,Data Scientist,Remote,BRA,120000\n" +
		"2024,Junior,CLT,M,Analyst,Hybrid,USA,60000\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	Cmd.SetOut(&buf)
	Cmd.SetErr(&buf)
	Cmd.SetArgs(args)
	defer Cmd.SetArgs(nil)
	err := Cmd.Execute()
	return buf.String(), err
}

func TestReportCommandYearFilter(t *testing.T) {
	path := writeDataset(t)

	out, err := runCmd(t, "report", "--dataset-path", path, "--year=")
	if err != nil {
		t.Fatalf("report --year=: %v", err)
	}
	if !strings.Contains(out, "No data to display") {
		t.Errorf("empty year set should select nothing:\n%s", out)
	}

	out, err = runCmd(t, "report", "--dataset-path", path, "--year=2024")
	if err != nil {
		t.Fatalf("report --year=2024: %v", err)
	}
	if !strings.Contains(out, "$60,000") || strings.Contains(out, "BRA") {
		t.Errorf("expected only the 2024 row:\n%s", out)
	}

	if _, err := runCmd(t, "report", "--dataset-path", path, "--year=abc"); err == nil {
		t.Error("expected an error for a non-numeric year")
	}
}

func TestParseYears(t *testing.T) {
	got, err := parseYears([]string{" 2023", "", "2024 "})
	if err != nil || len(got) != 2 || got[0] != 2023 || got[1] != 2024 {
		t.Errorf("parseYears: %v, %v", got, err)
	}
	if got, err := parseYears(nil); err != nil || got == nil || len(got) != 0 {
		t.Errorf("parseYears(nil) should be an empty set, got %#v, %v", got, err)
	}
}

func TestTruncateRunes(t *testing.T) {
	got := truncate("Cientista de Dados Sênior Especialista", 20)
	if n := len([]rune(got)); n != 20 {
		t.Errorf("expected 20 runes, got %d: %q", n, got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("invalid UTF-8: %q", got)
	}
	if got := truncate("Sênior", 10); got != "Sênior" {
		t.Errorf("short string changed: %q", got)
	}
}
