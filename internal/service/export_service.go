package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

// ExportFileName returns the download name of an export
func ExportFileName(entity, locale, format string, now time.Time) string {
	if locale == "" {
		locale = "all"
	}
	return fmt.Sprintf("%s_%s_%s.%s", entity, locale, now.Format("2006-01-02"), format)
}

// ExportJSON writes rows as an indented JSON array
func ExportJSON[T any](w io.Writer, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// ExportCSV writes rows as CSV with one column per json field name. Embedded
// structs are flattened and string lists are joined with "; ".
func ExportCSV[T any](w io.Writer, rows []T) error {
	var zero T
	columns := csvColumns(reflect.TypeOf(zero))

	cw := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		v := reflect.ValueOf(row)
		for i, col := range columns {
			record[i] = csvValue(v.FieldByIndex(col.index))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type csvColumn struct {
	name  string
	index []int
}

func csvColumns(t reflect.Type) []csvColumn {
	var columns []csvColumn
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			for _, inner := range csvColumns(f.Type) {
				columns = append(columns, csvColumn{name: inner.name, index: append([]int{i}, inner.index...)})
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		columns = append(columns, csvColumn{name: name, index: []int{i}})
	}
	return columns
}

func csvValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if t, ok := v.Interface().(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return escapeFormula(strings.Join(parts, "; "))
	}
	if v.Kind() == reflect.String {
		return escapeFormula(v.String())
	}
	return fmt.Sprint(v.Interface())
}

// escapeFormula prefixes text a spreadsheet would evaluate as a formula with a
// single quote
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
