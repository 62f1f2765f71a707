package parsers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Seed files carry factory-wide defaults loaded at startup: sewing stages
// (Name, SeqNo) and blocker types (Name).

// skipBOM strips a leading UTF-8 BOM; spreadsheet exports usually have one.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if peeked, err := br.Peek(3); err == nil && bytes.Equal(peeked, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	return br
}

// headerIndex maps column names to positions and errors on any missing
// required column.
func headerIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("required header not found: %s", name)
		}
	}
	return idx, nil
}

type ParsedStageRecord struct {
	Name  string
	SeqNo int
}

func ParseStageSeedCSV(r io.Reader) ([]ParsedStageRecord, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := headerIndex(header, "Name")
	if err != nil {
		return nil, err
	}
	idxSeq, hasSeq := colIndex["SeqNo"]

	var records []ParsedStageRecord
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: CSV line %d read error (skipped): %v", line, err)
			continue
		}

		get := func(idx int) string {
			if idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		name := get(colIndex["Name"])
		if name == "" {
			continue
		}
		seqNo := 0
		if hasSeq {
			seqNo, _ = strconv.Atoi(get(idxSeq))
		}
		records = append(records, ParsedStageRecord{Name: name, SeqNo: seqNo})
	}
	return records, nil
}

func ParseBlockerTypeSeedCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := headerIndex(header, "Name")
	if err != nil {
		return nil, err
	}

	var names []string
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: CSV line %d read error (skipped): %v", line, err)
			continue
		}
		idx := colIndex["Name"]
		if idx < len(rec) {
			if name := strings.TrimSpace(rec[idx]); name != "" {
				names = append(names, name)
			}
		}
	}
	return names, nil
}
