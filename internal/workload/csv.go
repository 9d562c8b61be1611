package workload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/stratos-karas/elise/internal/job"
)

// csvColumns are the header names FromCSV requires, in spec.md §6's order:
// "CSV of id,submit,…,wall_time,…,name". run_time and processes sit between
// submit and wall_time, mirroring the shuffled-list generator's record
// shape (realsim/generators/shufflekeyslist.py) re-expressed with an
// explicit header row instead of positional indices.
var csvColumns = []string{"id", "submit_time", "run_time", "processes", "wall_time", "name"}

// FromCSV reads a header-led CSV trace and produces one Job per data row.
// Unlike the Standard Workload Format importer, columns are matched by
// name, so callers can reorder them freely as long as every required
// column is present.
func FromCSV(path string) ([]*job.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workload: opening CSV trace: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("workload: reading CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, want := range csvColumns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("workload: CSV trace missing required column %q", want)
		}
	}

	var jobs []*job.Job
	rowNo := 1
	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("workload: reading CSV row %d: %w", rowNo, err)
		}
		rowNo++

		id, err := strconv.Atoi(row[col["id"]])
		if err != nil {
			return nil, fmt.Errorf("workload: CSV row %d: id: %w", rowNo, err)
		}
		processes, err := strconv.Atoi(row[col["processes"]])
		if err != nil {
			return nil, fmt.Errorf("workload: CSV row %d: processes: %w", rowNo, err)
		}
		runTime, err := strconv.ParseFloat(row[col["run_time"]], 64)
		if err != nil {
			return nil, fmt.Errorf("workload: CSV row %d: run_time: %w", rowNo, err)
		}
		submitTime, err := strconv.ParseFloat(row[col["submit_time"]], 64)
		if err != nil {
			return nil, fmt.Errorf("workload: CSV row %d: submit_time: %w", rowNo, err)
		}
		wallTime, err := strconv.ParseFloat(row[col["wall_time"]], 64)
		if err != nil {
			return nil, fmt.Errorf("workload: CSV row %d: wall_time: %w", rowNo, err)
		}
		jobs = append(jobs, job.New(id, row[col["name"]], processes, runTime, submitTime, wallTime))
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("workload: CSV trace %s contains no job rows", path)
	}
	return jobs, nil
}
