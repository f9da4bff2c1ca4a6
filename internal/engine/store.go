package engine

import "salarydash/internal/models"

// ColumnStore holds the dataset in Struct-of-Arrays format.
// It is built once by the loader and never mutated afterwards.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	Years    []int32
	Salaries []float64

	// Dictionary Encoded IDs (0..N), assigned in first-appearance order
	SeniorityIDs []int32
	ContractIDs  []int32
	SizeIDs      []int32
	RoleIDs      []int32
	RemoteIDs    []int32
	CountryIDs   []int32

	// Dictionaries (ID -> String)
	SeniorityDict []string
	ContractDict  []string
	SizeDict      []string
	RoleDict      []string
	RemoteDict    []string
	CountryDict   []string
}

// Len returns the number of rows.
func (cs *ColumnStore) Len() int {
	return len(cs.Salaries)
}

// Record materializes row i.
func (cs *ColumnStore) Record(i int) models.Record {
	return models.Record{
		Year:         int(cs.Years[i]),
		Seniority:    cs.SeniorityDict[cs.SeniorityIDs[i]],
		ContractType: cs.ContractDict[cs.ContractIDs[i]],
		CompanySize:  cs.SizeDict[cs.SizeIDs[i]],
		Role:         cs.RoleDict[cs.RoleIDs[i]],
		RemoteType:   cs.RemoteDict[cs.RemoteIDs[i]],
		Country:      cs.CountryDict[cs.CountryIDs[i]],
		SalaryUSD:    cs.Salaries[i],
	}
}

// FromRecords builds a store from row-oriented records.
func FromRecords(records []models.Record) *ColumnStore {
	n := len(records)
	cs := &ColumnStore{
		Years:        make([]int32, n),
		Salaries:     make([]float64, n),
		SeniorityIDs: make([]int32, n),
		ContractIDs:  make([]int32, n),
		SizeIDs:      make([]int32, n),
		RoleIDs:      make([]int32, n),
		RemoteIDs:    make([]int32, n),
		CountryIDs:   make([]int32, n),
	}
	seniority := newDict(&cs.SeniorityDict)
	contract := newDict(&cs.ContractDict)
	size := newDict(&cs.SizeDict)
	role := newDict(&cs.RoleDict)
	remote := newDict(&cs.RemoteDict)
	country := newDict(&cs.CountryDict)

	for i, r := range records {
		cs.Years[i] = int32(r.Year)
		cs.Salaries[i] = r.SalaryUSD
		cs.SeniorityIDs[i] = seniority.id(r.Seniority)
		cs.ContractIDs[i] = contract.id(r.ContractType)
		cs.SizeIDs[i] = size.id(r.CompanySize)
		cs.RoleIDs[i] = role.id(r.Role)
		cs.RemoteIDs[i] = remote.id(r.RemoteType)
		cs.CountryIDs[i] = country.id(r.Country)
	}
	return cs
}

// dict interns strings into a dictionary column.
type dict struct {
	ids  map[string]int32
	list *[]string
}

func newDict(list *[]string) *dict {
	if *list == nil {
		*list = make([]string, 0, 16)
	}
	return &dict{ids: make(map[string]int32), list: list}
}

func (d *dict) id(s string) int32 {
	if id, ok := d.ids[s]; ok {
		return id
	}
	id := int32(len(*d.list))
	*d.list = append(*d.list, s)
	d.ids[s] = id
	return id
}
