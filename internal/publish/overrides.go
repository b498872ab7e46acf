package publish

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Override actions, matching the verbs in the correction list.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Override is one parsed correction-list row. Name, Category and Edition are
// empty when the column was blank; for updates an empty field means "leave
// the existing value alone", never "clear it".
type Override struct {
	Action   string
	URL      string
	Name     string
	Category string
	Edition  string
}

// LoadOverrides reads the correction list CSV (header columns
// action,url,name,category,edition). Rows whose action is not a recognized
// verb are dropped here, so downstream merge logic only ever sees valid
// records. A missing file is an empty list, not an error.
func LoadOverrides(path string) ([]Override, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open overrides: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read overrides header: %w", err)
	}

	var out []Override
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read overrides row: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		ov := Override{
			Action:   strings.ToLower(valueAt(header, row, "action")),
			URL:      valueAt(header, row, "url"),
			Name:     valueAt(header, row, "name"),
			Category: valueAt(header, row, "category"),
			Edition:  valueAt(header, row, "edition"),
		}

		switch ov.Action {
		case ActionAdd, ActionUpdate, ActionDelete:
		default:
			// malformed or blank action: skip the row, keep reading
			continue
		}
		if ov.URL == "" {
			continue
		}
		out = append(out, ov)
	}
	return out, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
