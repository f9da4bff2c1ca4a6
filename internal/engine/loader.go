package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"salarydash/internal/logger"

	"github.com/pkg/errors"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Source locates the dataset. Path wins over URL when both are set.
type Source struct {
	Path    string
	URL     string
	Timeout time.Duration
}

func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return s.URL
}

// --- 1. COLUMN LAYOUT ---

type column int

const (
	colYear column = iota
	colSeniority
	colContract
	colSize
	colRole
	colRemote
	colCountry
	colSalary
	numColumns
)

// headerNames maps each column to the header names it accepts: the
// canonical name first, then the name used by the published dataset.
var headerNames = [numColumns][]string{
	colYear:      {"year", "ano"},
	colSeniority: {"seniority", "senioridade"},
	colContract:  {"contract_type", "contrato"},
	colSize:      {"company_size", "tamanho_empresa"},
	colRole:      {"role", "cargo"},
	colRemote:    {"remote_type", "remoto"},
	colCountry:   {"residence_country_code", "residencia_iso3"},
	colSalary:    {"salary_usd", "usd"},
}

func resolveHeader(header []string) ([numColumns]int, error) {
	var idx [numColumns]int
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	for c := column(0); c < numColumns; c++ {
		idx[c] = -1
		for _, name := range headerNames[c] {
			if i, ok := pos[name]; ok {
				idx[c] = i
				break
			}
		}
		if idx[c] < 0 {
			return idx, errors.Wrapf(ErrMissingColumn, "%q", headerNames[c][0])
		}
	}
	return idx, nil
}

// --- 2. FETCH ---

// Fetch reads the raw dataset bytes from a local file or over HTTP.
func Fetch(ctx context.Context, src Source) ([]byte, error) {
	switch {
	case src.Path != "":
		b, err := os.ReadFile(src.Path)
		return b, errors.Wrap(err, "read dataset file")
	case src.URL != "":
		if src.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, src.Timeout)
			defer cancel()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
		if err != nil {
			return nil, errors.Wrap(err, "build dataset request")
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "fetch dataset")
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("fetch dataset: unexpected status %d", resp.StatusCode)
		}
		b, err := io.ReadAll(resp.Body)
		return b, errors.Wrap(err, "read dataset body")
	default:
		return nil, errors.New("either dataset path or url must be provided")
	}
}

// --- 3. MAIN LOADER ---

// Load fetches and parses the dataset. Any failure is fatal to the caller.
func Load(ctx context.Context, src Source) (*ColumnStore, error) {
	start := time.Now()
	log := logger.Named("loader")
	log.Info().Str("source", src.String()).Msg("loading dataset")

	content, err := Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	store, err := Parse(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", src.String())
	}

	log.Info().
		Int("rows", store.Len()).
		Int("bytes", len(content)).
		Dur("took", time.Since(start)).
		Msg("dataset loaded")
	return store, nil
}

// Parse decodes delimited text with a header row into a ColumnStore.
func Parse(r io.Reader) (*ColumnStore, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty dataset: no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	idx, err := resolveHeader(header)
	if err != nil {
		return nil, err
	}

	store := &ColumnStore{}
	seniority := newDict(&store.SeniorityDict)
	contract := newDict(&store.ContractDict)
	size := newDict(&store.SizeDict)
	role := newDict(&store.RoleDict)
	remote := newDict(&store.RemoteDict)
	country := newDict(&store.CountryDict)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read row")
		}
		line, _ := reader.FieldPos(0)

		year, err := parseYear(row[idx[colYear]])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: year", line)
		}
		salary, err := parseSalary(row[idx[colSalary]])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: salary", line)
		}

		store.Years = append(store.Years, year)
		store.Salaries = append(store.Salaries, salary)
		store.SeniorityIDs = append(store.SeniorityIDs, seniority.id(field(row, idx[colSeniority])))
		store.ContractIDs = append(store.ContractIDs, contract.id(field(row, idx[colContract])))
		store.SizeIDs = append(store.SizeIDs, size.id(field(row, idx[colSize])))
		store.RoleIDs = append(store.RoleIDs, role.id(field(row, idx[colRole])))
		store.RemoteIDs = append(store.RemoteIDs, remote.id(field(row, idx[colRemote])))
		store.CountryIDs = append(store.CountryIDs, country.id(field(row, idx[colCountry])))
	}
	return store, nil
}

// field copies the cell out of the reused row buffer.
func field(row []string, i int) string {
	return strings.Clone(strings.TrimSpace(row[i]))
}

// parseYear accepts "2023" and the float form "2023.0".
func parseYear(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int32(f)) {
		return 0, errors.Errorf("invalid year %q", s)
	}
	return int32(f), nil
}

func parseSalary(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("invalid amount %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("invalid amount %q", s)
	}
	if f < 0 {
		return 0, errors.Errorf("negative amount %q", s)
	}
	return f, nil
}
