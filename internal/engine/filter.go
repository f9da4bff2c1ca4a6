package engine

import (
	"sort"
	"strconv"

	"salarydash/internal/models"

	"golang.org/x/exp/constraints"
)

// Dimension names a filterable column.
type Dimension string

const (
	DimYear         Dimension = "year"
	DimSeniority    Dimension = "seniority"
	DimContractType Dimension = "contract_type"
	DimCompanySize  Dimension = "company_size"
)

// Dimensions lists the filterable columns in display order.
var Dimensions = []Dimension{DimYear, DimSeniority, DimContractType, DimCompanySize}

// View is an ordered subset of store rows. Zero data copy: it only holds
// row indices, always ascending.
type View struct {
	store *ColumnStore
	rows  []int32
}

func (v View) Len() int { return len(v.rows) }

// Row returns the store row index of the k-th view entry.
func (v View) Row(k int) int { return int(v.rows[k]) }

func (v View) Store() *ColumnStore { return v.store }

// Records materializes the rows in [offset, offset+limit).
func (v View) Records(offset, limit int) []models.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(v.rows) {
		return []models.Record{}
	}
	end := len(v.rows)
	if limit >= 0 && limit < end-offset {
		end = offset + limit
	}
	out := make([]models.Record, 0, end-offset)
	for _, r := range v.rows[offset:end] {
		out = append(out, v.store.Record(int(r)))
	}
	return out
}

// All returns a view over every row.
func (cs *ColumnStore) All() View {
	rows := make([]int32, cs.Len())
	for i := range rows {
		rows[i] = int32(i)
	}
	return View{store: cs, rows: rows}
}

// Filter returns the rows whose year, seniority, contract type and company
// size all belong to the selection. An empty set in any dimension yields an
// empty view; values absent from the dataset match nothing.
func (cs *ColumnStore) Filter(sel models.FilterSelection) View {
	empty := View{store: cs, rows: []int32{}}
	if len(sel.Years) == 0 || len(sel.Seniorities) == 0 ||
		len(sel.ContractTypes) == 0 || len(sel.CompanySizes) == 0 {
		return empty
	}

	years := make(map[int]struct{}, len(sel.Years))
	for _, y := range sel.Years {
		years[y] = struct{}{}
	}
	seniority := allowedIDs(cs.SeniorityDict, sel.Seniorities)
	contract := allowedIDs(cs.ContractDict, sel.ContractTypes)
	size := allowedIDs(cs.SizeDict, sel.CompanySizes)

	rows := make([]int32, 0, cs.Len())
	for i := 0; i < cs.Len(); i++ {
		if _, ok := years[int(cs.Years[i])]; !ok {
			continue
		}
		if !seniority[cs.SeniorityIDs[i]] || !contract[cs.ContractIDs[i]] || !size[cs.SizeIDs[i]] {
			continue
		}
		rows = append(rows, int32(i))
	}
	return View{store: cs, rows: rows}
}

// allowedIDs turns a value set into a membership mask indexed by dictionary ID.
func allowedIDs(dict, values []string) []bool {
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	mask := make([]bool, len(dict))
	for id, s := range dict {
		_, mask[id] = want[s]
	}
	return mask
}

// --- DISTINCT VALUES ---

// distinctSorted returns the ascending unique values of vals.
func distinctSorted[T constraints.Ordered](vals []T) []T {
	out := make([]T, len(vals))
	copy(out, vals)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// DistinctYears returns the distinct years, ascending.
func (cs *ColumnStore) DistinctYears() []int {
	ys := distinctSorted(cs.Years)
	out := make([]int, len(ys))
	for i, y := range ys {
		out[i] = int(y)
	}
	return out
}

// Distinct returns the sorted unique values of a filter column. Years are
// ordered numerically and rendered in decimal.
func (cs *ColumnStore) Distinct(dim Dimension) []string {
	switch dim {
	case DimYear:
		ys := cs.DistinctYears()
		out := make([]string, len(ys))
		for i, y := range ys {
			out[i] = strconv.Itoa(y)
		}
		return out
	case DimSeniority:
		return distinctSorted(cs.SeniorityDict)
	case DimContractType:
		return distinctSorted(cs.ContractDict)
	case DimCompanySize:
		return distinctSorted(cs.SizeDict)
	}
	return []string{}
}

// FilterOptions extracts the distinct values of every filter dimension.
func (cs *ColumnStore) FilterOptions() models.FilterOptions {
	return models.FilterOptions{
		Years:         cs.DistinctYears(),
		Seniorities:   cs.Distinct(DimSeniority),
		ContractTypes: cs.Distinct(DimContractType),
		CompanySizes:  cs.Distinct(DimCompanySize),
	}
}
