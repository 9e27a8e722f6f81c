package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"
)

// titleColumnCandidates are tried in order, case-sensitively, before any
// header merely containing "title".
var titleColumnCandidates = []string{
	"title", "Title", "episode_title", "name", "title_csv", "Episode Title", "EPISODE_TITLE",
}

var errNoTitleColumn = errors.New("no title column found")

// pickTitleColumn returns the index of the title column in header, or -1.
func pickTitleColumn(header []string) int {
	for _, cand := range titleColumnCandidates {
		if i := slices.Index(header, cand); i >= 0 {
			return i
		}
	}
	for i, col := range header {
		if strings.Contains(strings.ToLower(col), "title") {
			return i
		}
	}
	return -1
}

// cleanTitle applies NFKC normalization, drops control characters and
// collapses whitespace.
func cleanTitle(t string) string {
	t = norm.NFKC.String(t)
	t = strings.TrimPrefix(t, "\ufeff")
	t = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, t)
	return strings.Join(strings.Fields(t), " ")
}

// loadTitles reads corpus titles from path. The format follows the file
// extension: .csv and .tsv need a header with a title column, .json holds
// an array of objects, .jsonl one object per line, and anything else is
// read as one title per line.
func loadTitles(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadDelimitedTitles(path, ',')
	case ".tsv":
		return loadDelimitedTitles(path, '\t')
	case ".json", ".jsonl", ".ndjson":
		return loadJSONTitles(path)
	default:
		return loadPlainTitles(path)
	}
}

func loadDelimitedTitles(path string, comma rune) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", filepath.Base(path))
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
	}
	col := pickTitleColumn(header)
	if col < 0 {
		return nil, fmt.Errorf("%s: %w in header %v", filepath.Base(path), errNoTitleColumn, header)
	}

	titles := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if t := cleanTitle(row[col]); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

// loadJSONTitles accepts either a JSON array of objects or JSON Lines.
func loadJSONTitles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}

	var records []map[string]any
	if err = json.Unmarshal(data, &records); err != nil {
		records, err = decodeJSONLines(data)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := jsonColumns(records)
	col := pickTitleColumn(cols)
	if col < 0 {
		return nil, fmt.Errorf("%s: %w in keys %v", filepath.Base(path), errNoTitleColumn, cols)
	}
	key := cols[col]

	titles := make([]string, 0, len(records))
	for _, rec := range records {
		var raw string
		switch v := rec[key].(type) {
		case nil:
			continue
		case string:
			raw = v
		default:
			raw = fmt.Sprint(v)
		}
		if t := cleanTitle(raw); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

func decodeJSONLines(data []byte) ([]map[string]any, error) {
	var records []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// jsonColumns returns the union of keys over all records, sorted so that
// the fallback column pick is stable.
func jsonColumns(records []map[string]any) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec {
			set[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func loadPlainTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if t := cleanTitle(scanner.Text()); t != "" {
			titles = append(titles, t)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filepath.Base(path), err)
	}
	return titles, nil
}

// mergeTitles combines title lists, drops exact duplicates and empties and
// sorts the result.
func mergeTitles(lists ...[]string) []string {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, t := range list {
			if t != "" {
				set[t] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
