package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVOptions holds options for panel CSV loading.
type CSVOptions struct {
	YearColumn string // Column name holding the year (default: first column)
	Delimiter  rune   // Field delimiter (default: ',')
	ApplyLog   bool   // Apply natural log to all values after loading
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{Delimiter: ','}
}

// LoadPanelCSV loads a panel from a wide-format CSV file: one year column
// and one column per entity.
func LoadPanelCSV(filename string, opts *CSVOptions) (*Panel, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadPanelCSVFromReader(file, opts)
}

// LoadPanelCSVFromReader loads a wide-format panel from an io.Reader.
func LoadPanelCSVFromReader(r io.Reader, opts *CSVOptions) (*Panel, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	yearIdx := 0
	if opts.YearColumn != "" {
		yearIdx = -1
		for i, h := range header {
			if strings.TrimSpace(h) == opts.YearColumn {
				yearIdx = i
				break
			}
		}
		if yearIdx == -1 {
			return nil, fmt.Errorf("year column %q not found in header", opts.YearColumn)
		}
	}

	entityIdx := make([]int, 0, len(header)-1)
	entities := make([]string, 0, len(header)-1)
	for i, h := range header {
		if i == yearIdx {
			continue
		}
		name := strings.TrimSpace(strings.Trim(h, "\""))
		if name == "" {
			continue
		}
		entityIdx = append(entityIdx, i)
		entities = append(entities, name)
	}
	if len(entities) == 0 {
		return nil, errors.New("no entity columns found in CSV header")
	}

	var years []int
	values := make([][]float64, len(entities))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[yearIdx]))
		if err != nil {
			continue // skip rows with an unparseable year
		}
		row := make([]float64, len(entities))
		ok := true
		for j, idx := range entityIdx {
			if idx >= len(record) {
				ok = false
				break
			}
			valStr := strings.TrimSpace(strings.Trim(record[idx], "\""))
			if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				ok = false
				break
			}
			row[j] = v
		}
		if !ok {
			continue // keep series aligned: drop years with any missing value
		}
		years = append(years, year)
		for j, v := range row {
			values[j] = append(values[j], v)
		}
	}
	if len(years) == 0 {
		return nil, errors.New("no valid data rows found in CSV")
	}

	panel := NewPanel()
	for j, name := range entities {
		s := New(name, years[0], values[j])
		if opts.ApplyLog {
			s = s.Log()
		}
		if err := panel.Add(s); err != nil {
			return nil, err
		}
	}
	return panel, nil
}

// LoadClusterCSV loads entity cluster labels from a two-column CSV
// (entity, cluster id), with a header row.
func LoadClusterCSV(filename string) (ClusterAssignment, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	if _, err := reader.Read(); err != nil {
		return nil, err
	}

	clusters := make(ClusterAssignment)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(strings.Trim(record[0], "\""))
		id, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil || name == "" {
			continue
		}
		clusters[name] = id
	}
	if len(clusters) == 0 {
		return nil, errors.New("no cluster labels found in CSV")
	}
	return clusters, nil
}

// SavePanelCSV writes a panel to a wide-format CSV file.
func SavePanelCSV(panel *Panel, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	names := panel.Entities()
	header := append([]string{"year"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}
	if panel.NumEntities() == 0 {
		return ErrEmptyPanel
	}
	first, _ := panel.Get(names[0])
	for i := 0; i < panel.Length(); i++ {
		row := make([]string, 0, len(names)+1)
		row = append(row, strconv.Itoa(first.Year(i)))
		for _, n := range names {
			s, _ := panel.Get(n)
			row = append(row, strconv.FormatFloat(s.Values[i], 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
