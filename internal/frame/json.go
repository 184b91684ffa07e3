package frame

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

type jsonLoader struct{}

func (jsonLoader) Formats() []string { return []string{"json"} }

// Load accepts the common pandas layouts: a records array, an array of
// arrays, a column-oriented object and the {"columns","data"} split form.
func (jsonLoader) Load(_ context.Context, path string, _ Options) (*Frame, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJSON(b, filepath.Base(path))
}

// ParseJSON decodes a JSON table document.
func ParseJSON(b []byte, name string) (*Frame, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty file")
	}
	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil, fmt.Errorf("decode json array: %w", err)
		}
		return fromArray(name, items)
	case '{':
		keys, vals, err := orderedObject(b)
		if err != nil {
			return nil, err
		}
		return fromObject(name, keys, vals)
	default:
		return nil, errors.New("json document must be an array or an object")
	}
}

func fromArray(name string, items []json.RawMessage) (*Frame, error) {
	if len(items) == 0 {
		return New(name, nil, nil), nil
	}
	first := bytes.TrimSpace(items[0])
	if len(first) > 0 && first[0] == '[' {
		var rows [][]string
		width := 0
		for i, it := range items {
			var cells []json.RawMessage
			if err := json.Unmarshal(it, &cells); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			row := make([]string, len(cells))
			for j, c := range cells {
				row[j] = cellText(c)
			}
			if len(row) > width {
				width = len(row)
			}
			rows = append(rows, row)
		}
		header := make([]string, width)
		for i := range header {
			header[i] = strconv.Itoa(i)
		}
		return New(name, header, rows), nil
	}

	var header []string
	index := map[string]int{}
	records := make([]map[string]string, 0, len(items))
	for i, it := range items {
		keys, vals, err := orderedObject(it)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rec := make(map[string]string, len(keys))
		for k, key := range keys {
			if _, ok := index[key]; !ok {
				index[key] = len(header)
				header = append(header, key)
			}
			rec[key] = cellText(vals[k])
		}
		records = append(records, rec)
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(header))
		for k, v := range rec {
			row[index[k]] = v
		}
		rows[i] = row
	}
	return New(name, header, rows), nil
}

func fromObject(name string, keys []string, vals []json.RawMessage) (*Frame, error) {
	// split orient
	if len(keys) >= 2 && contains(keys, "columns") && contains(keys, "data") {
		var split struct {
			Columns []string            `json:"columns"`
			Data    [][]json.RawMessage `json:"data"`
		}
		obj := map[string]json.RawMessage{}
		for i, k := range keys {
			obj[k] = vals[i]
		}
		if err := json.Unmarshal(obj["columns"], &split.Columns); err != nil {
			return nil, fmt.Errorf("decode columns: %w", err)
		}
		if err := json.Unmarshal(obj["data"], &split.Data); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
		rows := make([][]string, len(split.Data))
		for i, r := range split.Data {
			row := make([]string, len(r))
			for j, c := range r {
				row[j] = cellText(c)
			}
			rows[i] = row
		}
		return New(name, split.Columns, rows), nil
	}

	// column orient: {"col": [..]} or {"col": {"0": v, ...}}
	columns := make([][]string, len(keys))
	height := 0
	for i, v := range vals {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) > 0 && v[0] == '[':
			var cells []json.RawMessage
			if err := json.Unmarshal(v, &cells); err != nil {
				return nil, fmt.Errorf("column %q: %w", keys[i], err)
			}
			for _, c := range cells {
				columns[i] = append(columns[i], cellText(c))
			}
		case len(v) > 0 && v[0] == '{':
			var byIndex map[string]json.RawMessage
			if err := json.Unmarshal(v, &byIndex); err != nil {
				return nil, fmt.Errorf("column %q: %w", keys[i], err)
			}
			idx := make([]string, 0, len(byIndex))
			for k := range byIndex {
				idx = append(idx, k)
			}
			sortIndexKeys(idx)
			for _, k := range idx {
				columns[i] = append(columns[i], cellText(byIndex[k]))
			}
		default:
			return nil, fmt.Errorf("column %q: expected array or object", keys[i])
		}
		if len(columns[i]) > height {
			height = len(columns[i])
		}
	}
	rows := make([][]string, height)
	for r := range rows {
		row := make([]string, len(keys))
		for c := range keys {
			if r < len(columns[c]) {
				row[c] = columns[c][r]
			}
		}
		rows[r] = row
	}
	return New(name, keys, rows), nil
}

// orderedObject decodes one JSON object keeping key order.
func orderedObject(b []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected a json object")
	}
	var keys []string
	var vals []json.RawMessage
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decode key: %w", err)
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("decode value of %q: %w", key, err)
		}
		keys = append(keys, key)
		vals = append(vals, raw)
	}
	return keys, vals, nil
}

// cellText renders a JSON scalar the way pandas prints it.
func cellText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case 't':
		return "True"
	case 'f':
		return "False"
	}
	return string(raw)
}

func sortIndexKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
