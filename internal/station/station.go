// Package station loads the list of capture targets from a stations file.
package station

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Spec describes one stream to record. Name keys both the output artifact and
// the capture log, so it must be unique and filesystem-safe.
type Spec struct {
	Name      string
	URL       string
	Language  string
	UserAgent string
	Referer   string
}

// safeName restricts station names to characters that are safe in file names.
var safeName = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Load parses the stations file into an ordered list of specs.
//
// The file is comma-separated with one station per line:
// name,url,language[,user_agent,referer]. Blank lines and lines starting
// with '#' are skipped. Records with fewer than three fields, unsafe names,
// or duplicate names are rejected rather than silently dropped.
func Load(path string) ([]Spec, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stations file: %w", err)
	}
	defer file.Close()

	var specs []Spec
	seen := make(map[string]int)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		spec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("stations file line %d: %w", lineNo, err)
		}
		if prev, ok := seen[spec.Name]; ok {
			return nil, fmt.Errorf("stations file line %d: duplicate station name %q (first used on line %d)", lineNo, spec.Name, prev)
		}
		seen[spec.Name] = lineNo
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stations file: %w", err)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("stations file %s contains no stations", path)
	}

	return specs, nil
}

func parseLine(line string) (Spec, error) {
	record, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return Spec{}, fmt.Errorf("malformed record: %w", err)
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	if len(record) < 3 {
		return Spec{}, fmt.Errorf("expected at least 3 fields (name,url,language), got %d", len(record))
	}

	spec := Spec{
		Name:     record[0],
		URL:      record[1],
		Language: record[2],
	}
	if len(record) > 3 {
		spec.UserAgent = record[3]
	}
	if len(record) > 4 {
		spec.Referer = record[4]
	}

	if spec.Name == "" || spec.URL == "" || spec.Language == "" {
		return Spec{}, fmt.Errorf("name, url and language must not be empty")
	}
	if !safeName.MatchString(spec.Name) {
		return Spec{}, fmt.Errorf("station name %q contains characters unsafe for file names", spec.Name)
	}

	return spec, nil
}
