package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cdrscan/cdrscan/internal/model"
)

// CheckStatus is the outcome of a single validation check.
type CheckStatus int

const (
	// CheckOK means the check passed.
	CheckOK CheckStatus = iota

	// CheckWarn means the check found something worth reviewing that does
	// not block analysis.
	CheckWarn

	// CheckFail means the check found a problem that would break or
	// corrupt analysis.
	CheckFail
)

// String returns the display form of the status, as printed in the
// validation verdict lines.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarn:
		return "WARN"
	case CheckFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Check is one validation check result.
type Check struct {
	// Name identifies the check (e.g., "required columns").
	Name string

	// Status is the outcome.
	Status CheckStatus

	// Detail explains the outcome, empty when nothing needs saying.
	Detail string
}

// ValidationResult collects the checks performed on one file.
type ValidationResult struct {
	// Path is the validated file.
	Path string

	// Checks are the individual check results, in execution order.
	Checks []Check
}

func (r *ValidationResult) add(name string, status CheckStatus, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
}

func (r *ValidationResult) ok(name, detail string)   { r.add(name, CheckOK, detail) }
func (r *ValidationResult) warn(name, detail string) { r.add(name, CheckWarn, detail) }
func (r *ValidationResult) fail(name, detail string) { r.add(name, CheckFail, detail) }

// Failed reports whether any check failed.
func (r *ValidationResult) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == CheckFail {
			return true
		}
	}
	return false
}

// Warnings counts checks that ended in a warning.
func (r *ValidationResult) Warnings() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == CheckWarn {
			n++
		}
	}
	return n
}

// ValidateRecordsFile runs the record-file checks: file presence, header,
// required and optional columns, per-field value rules, and a full load
// test. The checks mirror what analysis would reject, so a file that
// validates clean also loads clean.
func ValidateRecordsFile(path string) *ValidationResult {
	result := &ValidationResult{Path: path}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided evidence path is intentional
	if err != nil {
		result.fail("file exists", err.Error())
		return result
	}
	result.ok("file exists", fmt.Sprintf("%d bytes", len(data)))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		result.fail("header row", "no header row")
		return result
	}
	result.ok("header row", strings.Join(header, ", "))

	idx := indexColumns(header)
	if absent := idx.missing(requiredRecordColumns); len(absent) > 0 {
		result.fail("required columns", "missing: "+strings.Join(absent, ", "))
		return result
	}
	result.ok("required columns", strings.Join(requiredRecordColumns, ", "))

	var present []string
	for _, col := range optionalRecordColumns {
		if _, ok := idx[col]; ok {
			present = append(present, col)
		}
	}
	if len(present) == 0 {
		result.warn("optional columns", "none of "+strings.Join(optionalRecordColumns, ", "))
	} else {
		result.ok("optional columns", strings.Join(present, ", "))
	}

	parsed, err := parseRecordsCSV(data, path)
	if err != nil {
		// Header problems are caught above; anything else is unexpected.
		result.fail("load test", err.Error())
		return result
	}

	checkFieldCount(result, "datetime format", parsed.Ignored.Datetime, parsed.Rows,
		"expected "+model.DatetimeLayout)
	checkFieldCount(result, "interaction values", parsed.Ignored.Interaction, parsed.Rows,
		"expected 'call' or 'text'")
	checkFieldCount(result, "direction values", parsed.Ignored.Direction, parsed.Rows,
		"expected 'in' or 'out'")
	checkFieldCount(result, "correspondent ids", parsed.Ignored.CorrespondentID, parsed.Rows,
		"empty correspondent_id")

	if parsed.Ignored.CallDuration > 0 {
		result.warn("call durations", fmt.Sprintf("%d/%d rows invalid (expected non-negative seconds)",
			parsed.Ignored.CallDuration, parsed.Rows))
	} else {
		result.ok("call durations", "")
	}
	if parsed.Ignored.Location > 0 {
		result.warn("coordinates", fmt.Sprintf("%d/%d rows invalid (expected latitude -90..90, longitude -180..180)",
			parsed.Ignored.Location, parsed.Rows))
	} else {
		result.ok("coordinates", "")
	}

	if len(parsed.Records) == 0 {
		result.fail("load test", "no valid records")
		return result
	}

	start := parsed.Records[0].Datetime
	end := parsed.Records[len(parsed.Records)-1].Datetime
	result.ok("load test", fmt.Sprintf("%d records, %s to %s",
		len(parsed.Records), start.Format(model.DatetimeLayout), end.Format(model.DatetimeLayout)))

	if parsed.Ignored.All > 0 {
		result.warn("ignored rows", fmt.Sprintf("%d of %d rows ignored during load", parsed.Ignored.All, parsed.Rows))
	}
	if parsed.Duplicates > 0 {
		result.warn("duplicate rows", strconv.Itoa(parsed.Duplicates)+" exact duplicates (kept)")
	}

	return result
}

// checkFieldCount records a FAIL with a count detail when bad > 0,
// otherwise an OK.
func checkFieldCount(result *ValidationResult, name string, bad, rows int, expectation string) {
	if bad > 0 {
		result.fail(name, fmt.Sprintf("%d/%d rows invalid (%s)", bad, rows, expectation))
		return
	}
	result.ok(name, "")
}

// ValidateAntennasFile runs the antennas-file checks: presence, required
// columns, and coordinate ranges.
func ValidateAntennasFile(path string) *ValidationResult {
	result := &ValidationResult{Path: path}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided evidence path is intentional
	if err != nil {
		result.fail("file exists", err.Error())
		return result
	}
	result.ok("file exists", fmt.Sprintf("%d bytes", len(data)))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		result.fail("header row", "no header row")
		return result
	}
	result.ok("header row", strings.Join(header, ", "))

	idx := indexColumns(header)
	if absent := idx.missing(requiredAntennaColumns); len(absent) > 0 {
		result.fail("required columns", "missing: "+strings.Join(absent, ", "))
		return result
	}
	result.ok("required columns", strings.Join(requiredAntennaColumns, ", "))

	parsed, err := ReadAntennas(path)
	if err != nil {
		result.fail("load test", err.Error())
		return result
	}

	if parsed.Invalid > 0 {
		result.warn("coordinates", fmt.Sprintf("%d/%d antennas have invalid coordinates", parsed.Invalid, parsed.Rows))
	} else {
		result.ok("coordinates", "all coordinates valid")
	}
	result.ok("load test", fmt.Sprintf("%d antennas", len(parsed.Antennas)))

	return result
}

// ValidateMappingFile runs the identity-mapping checks: presence, required
// columns, and duplicate phone numbers.
func ValidateMappingFile(path string) *ValidationResult {
	result := &ValidationResult{Path: path}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided evidence path is intentional
	if err != nil {
		result.fail("file exists", err.Error())
		return result
	}
	result.ok("file exists", fmt.Sprintf("%d bytes", len(data)))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		result.fail("header row", "no header row")
		return result
	}
	result.ok("header row", strings.Join(header, ", "))

	idx := indexColumns(header)
	if absent := idx.missing(requiredMappingColumns); len(absent) > 0 {
		result.fail("required columns", "missing: "+strings.Join(absent, ", "))
		return result
	}
	result.ok("required columns", strings.Join(requiredMappingColumns, ", "))

	parsed, err := ReadMapping(path)
	if err != nil {
		result.fail("load test", err.Error())
		return result
	}

	if parsed.Invalid > 0 {
		result.warn("phone numbers", fmt.Sprintf("%d/%d rows have no phone number", parsed.Invalid, parsed.Rows))
	} else {
		result.ok("phone numbers", "")
	}
	// Duplicate numbers silently overwrite each other in the map; surface it.
	if dupes := parsed.Rows - parsed.Invalid - len(parsed.Names); dupes > 0 {
		result.warn("duplicate numbers", fmt.Sprintf("%d phone numbers mapped more than once (last wins)", dupes))
	}
	result.ok("load test", fmt.Sprintf("%d names", len(parsed.Names)))

	return result
}

// ListSubjects returns the sorted subject ids found in the data directory:
// every {id}.csv whose name is a valid subject identifier. Files with a
// leading underscore (auxiliary files like _ID_MAPPING.csv) and the
// conventional antennas.csv are not subjects.
func ListSubjects(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}

	subjects := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".csv")
		if strings.HasPrefix(name, "_") || strings.EqualFold(name, "antennas") {
			continue
		}
		if _, err := model.NewSubjectID(name); err != nil {
			continue
		}
		subjects = append(subjects, name)
	}

	sort.Strings(subjects)
	return subjects, nil
}
