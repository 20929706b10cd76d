// internal/csvimport/csvimport.go
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"waste-docket-api-server/internal/models"
)

var ErrNoHeader = errors.New("csv has no header row")

// Record is one data row keyed by its (de-duplicated) header.
type Record map[string]string

// DedupeHeaders keeps the first occurrence of a name and suffixes later
// ones with _1, _2, ... in order of appearance.
func DedupeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		n, dup := seen[h]
		seen[h] = n + 1
		if dup {
			candidate := h + "_" + strconv.Itoa(n)
			for _, taken := seen[candidate]; taken; _, taken = seen[candidate] {
				n++
				candidate = h + "_" + strconv.Itoa(n)
			}
			seen[candidate] = 1
			h = candidate
		}
		out[i] = h
	}
	return out
}

// Parse reads a header row followed by data rows. Short rows leave the
// missing columns empty; extra cells are dropped.
func Parse(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = DedupeHeaders(header)

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// column aliases in order of preference, keyed by a header folded to lower
// case without spaces, underscores or dashes
var columns = []struct {
	key     string
	headers []string
}{
	{"name", []string{"customername", "name"}},
	{"email", []string{"customeremail", "email"}},
	{"phone", []string{"customerphone", "phone", "phonenumber"}},
	{"line1", []string{"addressline1", "address1", "address"}},
	{"line2", []string{"addressline2", "address2"}},
	{"town", []string{"town", "city"}},
	{"county", []string{"county"}},
	{"eircode", []string{"eircode", "postcode"}},
	{"country", []string{"country"}},
}

func fold(h string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h))
}

// Contact maps a record onto a customer contact. Unknown columns are ignored.
func (r Record) Contact() models.CustomerContact {
	byAlias := make(map[string][]string, len(r))
	for h, v := range r {
		if v != "" {
			byAlias[fold(h)] = append(byAlias[fold(h)], h)
		}
	}
	fields := map[string]string{}
	for _, col := range columns {
		for _, alias := range col.headers {
			hs := byAlias[alias]
			if len(hs) == 0 {
				continue
			}
			sort.Strings(hs)
			fields[col.key] = r[hs[0]]
			break
		}
	}
	return models.CustomerContact{
		CustomerName:  fields["name"],
		CustomerEmail: fields["email"],
		CustomerPhone: fields["phone"],
		CustomerAddress: models.Address{
			AddressLine1: fields["line1"],
			AddressLine2: fields["line2"],
			Town:         fields["town"],
			County:       fields["county"],
			Eircode:      fields["eircode"],
			Country:      fields["country"],
		},
		IsAutoImported: true,
	}
}

// Plan picks the contacts to create. Rows with a blank name, a name already
// in existing, or a name seen on an earlier row are skipped. Names compare
// case-insensitively on the whole string.
func Plan(records []Record, existing []string) (create []models.CustomerContact, skipped int) {
	taken := make(map[string]bool, len(existing)+len(records))
	for _, n := range existing {
		taken[strings.ToLower(n)] = true
	}
	for _, rec := range records {
		c := rec.Contact()
		key := strings.ToLower(c.CustomerName)
		if key == "" || taken[key] {
			skipped++
			continue
		}
		taken[key] = true
		create = append(create, c)
	}
	return create, skipped
}
