// Package parser turns raw source payloads into uniform key/value records.
package parser

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed payload")

// Record is one parsed row keyed by the source's own field names.
type Record map[string]string

// Keys returns the record's field names.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// EnvelopeKeys are the object fields searched, in order, for the record array of a JSON payload.
var EnvelopeKeys = []string{"records", "data", "items", "results", "rows", "employees", "attendance"}

var xlsxMagic = []byte("PK\x03\x04")

// Parse detects the payload shape and returns its records in source order.
// Empty input yields no records and no error.
func Parse(payload []byte) ([]Record, error) {
	if bytes.HasPrefix(payload, xlsxMagic) {
		return parseXLSX(payload)
	}

	text, err := decodeText(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return []Record{}, nil
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		return parseJSON(trimmed)
	}
	return parseCSV(trimmed)
}

func parseJSON(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	items, err := unwrap(root)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedPayload, i)
		}
		rec := make(Record, len(obj))
		for k, v := range obj {
			rec[strings.TrimSpace(k)] = stringify(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// unwrap finds the record array: the top-level array, the first envelope key holding
// an array, or a lone object treated as a single record.
func unwrap(root interface{}) ([]interface{}, error) {
	switch v := root.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		for _, key := range EnvelopeKeys {
			inner, ok := v[key]
			if !ok {
				continue
			}
			if arr, ok := inner.([]interface{}); ok {
				return arr, nil
			}
			if inner == nil {
				return []interface{}{}, nil
			}
		}
		return []interface{}{v}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected top-level JSON value", ErrMalformedPayload)
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func parseCSV(data []byte) ([]Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: csv has no header line", ErrMalformedPayload)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		rows = append(rows, row)
	}
	return fromRows(header, rows), nil
}

// fromRows zips rows onto the header. Short rows get empty trailing values, extra cells are dropped,
// blank rows are skipped.
func fromRows(header []string, rows [][]string) []Record {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = cleanCell(h)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(keys))
		blank := true
		for i, key := range keys {
			if key == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = cleanCell(row[i])
			}
			if value != "" {
				blank = false
			}
			rec[key] = value
		}
		if blank {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func cleanCell(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
