package engine

import (
	"sort"

	"salarydash/internal/models"
)

const (
	DefaultBins      = 30
	DefaultTopRoles  = 10
	DefaultFocusRole = "Data Scientist"
)

// Options tunes the aggregates built for one dashboard pass.
type Options struct {
	Bins      int
	TopRoles  int
	FocusRole string
}

func DefaultOptions() Options {
	return Options{Bins: DefaultBins, TopRoles: DefaultTopRoles, FocusRole: DefaultFocusRole}
}

type aggStats struct {
	Sum   float64
	Count int
}

func (a aggStats) mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// Summarize computes the headline metrics. The most frequent role breaks ties
// in favour of the role seen first in row order. An empty view yields zeros
// and an empty role.
func Summarize(v View) models.KPI {
	if v.Len() == 0 {
		return models.KPI{}
	}
	cs := v.store

	var sum, top float64
	roleCount := make([]int, len(cs.RoleDict))
	order := make([]int32, 0, 16)
	for k, r := range v.rows {
		s := cs.Salaries[r]
		sum += s
		if k == 0 || s > top {
			top = s
		}
		rid := cs.RoleIDs[r]
		if roleCount[rid] == 0 {
			order = append(order, rid)
		}
		roleCount[rid]++
	}

	best := order[0]
	for _, rid := range order[1:] {
		if roleCount[rid] > roleCount[best] {
			best = rid
		}
	}

	return models.KPI{
		MeanSalary:       sum / float64(v.Len()),
		MaxSalary:        top,
		RecordCount:      v.Len(),
		MostFrequentRole: cs.RoleDict[best],
	}
}

// TopRoles groups by role and keeps the n roles with the highest mean
// salary, returned ascending so a horizontal bar chart puts the largest on
// top. Equal means keep first-encountered order.
func TopRoles(v View, n int) []models.RoleSalary {
	if v.Len() == 0 || n <= 0 {
		return []models.RoleSalary{}
	}
	cs := v.store

	stats := make([]aggStats, len(cs.RoleDict))
	order := make([]int32, 0, 16)
	for _, r := range v.rows {
		rid := cs.RoleIDs[r]
		if stats[rid].Count == 0 {
			order = append(order, rid)
		}
		stats[rid].Sum += cs.Salaries[r]
		stats[rid].Count++
	}

	out := make([]models.RoleSalary, 0, len(order))
	for _, rid := range order {
		out = append(out, models.RoleSalary{
			Role: cs.RoleDict[rid], MeanSalary: stats[rid].mean(), Count: stats[rid].Count,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeanSalary > out[j].MeanSalary })
	if len(out) > n {
		out = out[:n]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeanSalary < out[j].MeanSalary })
	return out
}

// Distribution buckets salaries into equal-width bins spanning [min, max].
// The last bin is closed on the right. When every salary is identical a
// single bin of width 1 centred on the value is returned.
func Distribution(v View, bins int) []models.Bin {
	if v.Len() == 0 || bins <= 0 {
		return []models.Bin{}
	}
	cs := v.store

	lo, hi := cs.Salaries[v.rows[0]], cs.Salaries[v.rows[0]]
	for _, r := range v.rows[1:] {
		s := cs.Salaries[r]
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	if hi == lo {
		return []models.Bin{{Lower: lo - 0.5, Upper: lo + 0.5, Count: v.Len()}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]models.Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, r := range v.rows {
		idx := int((cs.Salaries[r] - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// RemoteShare counts rows per remote type, most common first. Equal counts
// keep first-encountered order.
func RemoteShare(v View) []models.Share {
	out := make([]models.Share, 0, 4)
	if v.Len() == 0 {
		return out
	}
	cs := v.store

	counts := make([]int, len(cs.RemoteDict))
	order := make([]int32, 0, 4)
	for _, r := range v.rows {
		id := cs.RemoteIDs[r]
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	total := float64(v.Len())
	for _, id := range order {
		out = append(out, models.Share{
			Value: cs.RemoteDict[id], Count: counts[id], Fraction: float64(counts[id]) / total,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// CountryMeans averages salary per residence country over rows whose role
// equals role exactly. Countries without such rows are absent, never zero.
// Results are ordered by country code.
func CountryMeans(v View, role string) []models.CountryMean {
	out := make([]models.CountryMean, 0)
	if v.Len() == 0 {
		return out
	}
	cs := v.store

	roleID := int32(-1)
	for id, s := range cs.RoleDict {
		if s == role {
			roleID = int32(id)
			break
		}
	}
	if roleID < 0 {
		return out
	}

	stats := make([]aggStats, len(cs.CountryDict))
	for _, r := range v.rows {
		if cs.RoleIDs[r] != roleID {
			continue
		}
		cid := cs.CountryIDs[r]
		stats[cid].Sum += cs.Salaries[r]
		stats[cid].Count++
	}

	for cid, st := range stats {
		if st.Count > 0 {
			out = append(out, models.CountryMean{
				Country: cs.CountryDict[cid], MeanSalary: st.mean(), Count: st.Count,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

// Dashboard runs one full recompute for a selection: filter, then every
// aggregate over the filtered view.
func (cs *ColumnStore) Dashboard(sel models.FilterSelection, opts Options) *models.DashboardData {
	view := cs.Filter(sel)
	return &models.DashboardData{
		Selection:    sel,
		Options:      cs.FilterOptions(),
		KPI:          Summarize(view),
		TopRoles:     TopRoles(view, opts.TopRoles),
		Distribution: Distribution(view, opts.Bins),
		RemoteShare:  RemoteShare(view),
		CountryMeans: CountryMeans(view, opts.FocusRole),
	}
}
