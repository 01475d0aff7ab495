package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nagarik-sewa/backend/internal/models"
)

// Scope names the geographic granularity a ranking is computed over.
const (
	ScopeNational = "national"
	ScopeProvince = "province"
	ScopeDistrict = "district"
)

// Directory is the static office catalog. It is loaded once at startup and
// read-only afterwards, so lookups need no locking.
type Directory struct {
	offices []models.Office
	byID    map[string]models.Office
}

// Load reads the office catalog from a JSON file. The file holds an array
// of offices in the models.Office shape, as produced by the scraper.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var offices []models.Office
	if err := json.Unmarshal(data, &offices); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}
	return New(offices), nil
}

func New(offices []models.Office) *Directory {
	d := &Directory{
		offices: offices,
		byID:    make(map[string]models.Office, len(offices)),
	}
	for _, o := range offices {
		d.byID[o.ID] = o
	}
	sort.Slice(d.offices, func(i, j int) bool { return d.offices[i].ID < d.offices[j].ID })
	return d
}

func (d *Directory) Office(id string) (models.Office, bool) {
	o, ok := d.byID[id]
	return o, ok
}

// Offices returns the offices in the given scope, sorted by id. scopeKey is
// ignored for the national scope and matched case-insensitively otherwise.
func (d *Directory) Offices(scope, scopeKey string) []models.Office {
	var out []models.Office
	for _, o := range d.offices {
		switch scope {
		case ScopeNational:
			out = append(out, o)
		case ScopeProvince:
			if strings.EqualFold(o.Province, scopeKey) {
				out = append(out, o)
			}
		case ScopeDistrict:
			if strings.EqualFold(o.District, scopeKey) {
				out = append(out, o)
			}
		}
	}
	return out
}

// OfficesByDistrict filters the catalog by district and, optionally, office
// type. Used by the selection flow.
func (d *Directory) OfficesByDistrict(district, officeType string) []models.Office {
	var out []models.Office
	for _, o := range d.offices {
		if !strings.EqualFold(o.District, district) {
			continue
		}
		if officeType != "" && !strings.EqualFold(o.OfficeType, officeType) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Districts groups district names by province, both sorted.
func (d *Directory) Districts() map[string][]string {
	seen := make(map[string]map[string]bool)
	for _, o := range d.offices {
		if seen[o.Province] == nil {
			seen[o.Province] = make(map[string]bool)
		}
		seen[o.Province][o.District] = true
	}
	out := make(map[string][]string, len(seen))
	for province, districts := range seen {
		names := make([]string, 0, len(districts))
		for name := range districts {
			names = append(names, name)
		}
		sort.Strings(names)
		out[province] = names
	}
	return out
}

func (d *Directory) Len() int { return len(d.offices) }
