package workload

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stratos-karas/elise/internal/job"
)

// swfField indexes the whitespace-separated Standard Workload Format
// columns this importer reads, matching realsim/generators/swf.py's header
// map (0-based).
const (
	swfJobNumber           = 0
	swfSubmitTime          = 1
	swfRunTime             = 3
	swfRequestedProcessors = 7
	swfRequestedTime       = 8
	swfExecutableNumber    = 12
	swfMinFields           = 13
)

// FromSWF reads a Standard Workload Format file (one whitespace-separated
// record per line, lines beginning ';' are comments) and produces a Job per
// record: Processes from "Requested Number of Processors", RemainingTime
// from "Run Time" (the trace's actual execution time), WallTime from
// "Requested Time" (the estimate the scheduler would have seen), and Name
// from "Executable Number" — exactly SWFGenerator.generate_job's field
// mapping.
func FromSWF(path string) ([]*job.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workload: opening SWF file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var jobs []*job.Job
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < swfMinFields {
			return nil, fmt.Errorf("workload: SWF line %d: want at least %d fields, got %d", lineNo, swfMinFields, len(fields))
		}

		id, err := strconv.Atoi(fields[swfJobNumber])
		if err != nil {
			return nil, fmt.Errorf("workload: SWF line %d: job number: %w", lineNo, err)
		}
		processes, err := strconv.Atoi(fields[swfRequestedProcessors])
		if err != nil {
			return nil, fmt.Errorf("workload: SWF line %d: requested processors: %w", lineNo, err)
		}
		runTime, err := strconv.ParseFloat(fields[swfRunTime], 64)
		if err != nil {
			return nil, fmt.Errorf("workload: SWF line %d: run time: %w", lineNo, err)
		}
		submitTime, err := strconv.ParseFloat(fields[swfSubmitTime], 64)
		if err != nil {
			return nil, fmt.Errorf("workload: SWF line %d: submit time: %w", lineNo, err)
		}
		wallTime, err := strconv.ParseFloat(fields[swfRequestedTime], 64)
		if err != nil {
			return nil, fmt.Errorf("workload: SWF line %d: requested time: %w", lineNo, err)
		}

		jobs = append(jobs, job.New(id, fields[swfExecutableNumber], processes, runTime, submitTime, wallTime))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("workload: reading SWF file: %w", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("workload: SWF file %s contains no job records", path)
	}
	return jobs, nil
}
