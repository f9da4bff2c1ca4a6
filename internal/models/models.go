package models

// Record is one salary observation.
type Record struct {
	Year         int     `json:"year"`
	Seniority    string  `json:"seniority"`
	ContractType string  `json:"contract_type"`
	CompanySize  string  `json:"company_size"`
	Role         string  `json:"role"`
	RemoteType   string  `json:"remote_type"`
	Country      string  `json:"residence_country_code"`
	SalaryUSD    float64 `json:"salary_usd"`
}

// FilterSelection holds the allowed values per filter dimension.
// An empty set matches no rows.
type FilterSelection struct {
	Years         []int    `json:"year"`
	Seniorities   []string `json:"seniority"`
	ContractTypes []string `json:"contract_type"`
	CompanySizes  []string `json:"company_size"`
}

// FilterOptions lists the distinct values available to each filter.
type FilterOptions struct {
	Years         []int    `json:"year"`
	Seniorities   []string `json:"seniority"`
	ContractTypes []string `json:"contract_type"`
	CompanySizes  []string `json:"company_size"`
}

// Selection returns a FilterSelection that allows every option.
func (o FilterOptions) Selection() FilterSelection {
	return FilterSelection{
		Years:         append([]int{}, o.Years...),
		Seniorities:   append([]string{}, o.Seniorities...),
		ContractTypes: append([]string{}, o.ContractTypes...),
		CompanySizes:  append([]string{}, o.CompanySizes...),
	}
}

type KPI struct {
	MeanSalary       float64 `json:"mean_salary"`
	MaxSalary        float64 `json:"max_salary"`
	RecordCount      int     `json:"record_count"`
	MostFrequentRole string  `json:"most_frequent_role"`
}

// KPIDisplay is KPI pre-formatted for metric cards.
type KPIDisplay struct {
	MeanSalary       string `json:"mean_salary"`
	MaxSalary        string `json:"max_salary"`
	RecordCount      string `json:"record_count"`
	MostFrequentRole string `json:"most_frequent_role"`
}

type RoleSalary struct {
	Role       string  `json:"role"`
	MeanSalary float64 `json:"mean_salary"`
	Count      int     `json:"count"`
}

// Bin is one histogram bucket, [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Share struct {
	Value    string  `json:"remote_type"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

type CountryMean struct {
	Country    string  `json:"residence_country_code"`
	MeanSalary float64 `json:"mean_salary"`
	Count      int     `json:"count"`
}

// Chart carries what a renderer needs besides the data points.
type Chart struct {
	Title  string            `json:"title"`
	Labels map[string]string `json:"labels,omitempty"`
	Empty  string            `json:"empty,omitempty"`
}

type DashboardData struct {
	Selection    FilterSelection  `json:"selection"`
	Options      FilterOptions    `json:"options"`
	KPI          KPI              `json:"kpi"`
	KPIDisplay   KPIDisplay       `json:"kpi_display"`
	TopRoles     []RoleSalary     `json:"top_roles"`
	Distribution []Bin            `json:"distribution"`
	RemoteShare  []Share          `json:"remote_share"`
	CountryMeans []CountryMean    `json:"country_means"`
	Charts       map[string]Chart `json:"charts"`
}
