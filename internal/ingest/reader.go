package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/cdrscan/cdrscan/internal/model"
)

// File reading errors.
var (
	// ErrNoHeader is returned when a CSV file has no header row.
	ErrNoHeader = errors.New("file has no header row")

	// ErrMissingColumns is returned when a CSV file lacks required columns.
	// The error message lists the missing column names.
	ErrMissingColumns = errors.New("missing required columns")
)

// Required and optional record CSV columns. Matching is case-insensitive.
var (
	requiredRecordColumns  = []string{"datetime", "interaction", "direction", "correspondent_id"}
	optionalRecordColumns  = []string{"call_duration", "antenna_id", "latitude", "longitude"}
	requiredAntennaColumns = []string{"antenna_id", "latitude", "longitude"}
	requiredMappingColumns = []string{"phone_number", "name"}
)

// RecordsResult is the outcome of reading one record CSV file.
type RecordsResult struct {
	// Records are the valid rows, sorted by datetime. Duplicates are kept.
	Records []model.Record

	// Ignored counts rejected rows by failing field.
	Ignored model.IgnoredRecords

	// Duplicates counts exact duplicate rows among the valid records.
	Duplicates int

	// Rows is the number of data rows in the file, excluding the header.
	Rows int

	// Source describes the file that was read, including its digest.
	Source model.SourceFile
}

// AntennasResult is the outcome of reading an antennas CSV file.
type AntennasResult struct {
	// Antennas maps antenna ids to positions with coordinates.
	Antennas map[string]model.Position

	// Invalid counts rows with unparseable or out-of-range coordinates.
	Invalid int

	// Rows is the number of data rows in the file, excluding the header.
	Rows int

	// Source describes the file that was read, including its digest.
	Source model.SourceFile
}

// MappingResult is the outcome of reading an identity mapping CSV file.
type MappingResult struct {
	// Names maps phone numbers to display names.
	Names map[string]string

	// Invalid counts rows without a phone number.
	Invalid int

	// Rows is the number of data rows in the file, excluding the header.
	Rows int

	// Source describes the file that was read, including its digest.
	Source model.SourceFile
}

// digest returns the hex-encoded SHA3-256 digest of the given bytes.
func digest(data []byte) string {
	hash := sha3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// columnIndex maps lowercased column names to their positions in the header.
type columnIndex map[string]int

// indexColumns builds a columnIndex from a header row.
// Column names are trimmed and lowercased so exports with odd casing load.
func indexColumns(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

// missing returns the required column names absent from the index.
func (c columnIndex) missing(required []string) []string {
	var absent []string
	for _, name := range required {
		if _, ok := c[name]; !ok {
			absent = append(absent, name)
		}
	}
	return absent
}

// get returns the trimmed field value for a column, or "" when the column
// is absent or the row is too short.
func (c columnIndex) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadRecords reads a record CSV file.
//
// Rows that fail field validation are counted in the result's Ignored
// breakdown and excluded from Records; the read itself only fails for
// file-level problems (missing file, no header, missing required columns).
// This mirrors how investigators receive carrier exports: single bad rows
// are evidence-quality findings, not reasons to abort.
func ReadRecords(path string) (*RecordsResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided evidence path is intentional
	if err != nil {
		return nil, err
	}
	return parseRecordsCSV(data, path)
}

// parseRecordsCSV parses record CSV bytes. Split from ReadRecords so the
// validate command can reuse the parser on bytes it has already read.
func parseRecordsCSV(data []byte, path string) (*RecordsResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	// Column count is validated per field, not per row, so ragged rows are
	// judged by what they contain rather than rejected outright.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse header of %s: %w", path, err)
	}

	idx := indexColumns(header)
	if absent := idx.missing(requiredRecordColumns); len(absent) > 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrMissingColumns, strings.Join(absent, ", "), path)
	}

	result := &RecordsResult{
		Source: model.SourceFile{
			Path:       path,
			Role:       model.SourceRoleRecords,
			Digest:     digest(data),
			IngestedAt: time.Now(),
		},
	}

	seen := make(map[string]int)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.Rows++
		if err != nil {
			// CSV-level problem (bad quoting etc.). The row is unusable.
			result.Ignored.All++
			continue
		}

		rec, ignored := parseRecordRow(idx, row)
		if ignored != (model.IgnoredRecords{}) {
			result.Ignored.Datetime += ignored.Datetime
			result.Ignored.Interaction += ignored.Interaction
			result.Ignored.Direction += ignored.Direction
			result.Ignored.CorrespondentID += ignored.CorrespondentID
			result.Ignored.CallDuration += ignored.CallDuration
			result.Ignored.Location += ignored.Location
			result.Ignored.All++
			continue
		}

		key := duplicateKey(rec)
		if seen[key] > 0 {
			result.Duplicates++
		}
		seen[key]++
		result.Records = append(result.Records, rec)
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Datetime.Before(result.Records[j].Datetime)
	})

	result.Source.Rows = result.Rows
	return result, nil
}

// parseRecordRow validates one data row. On success the returned
// IgnoredRecords is the zero value; otherwise each failing field is counted
// once (a row can fail several fields).
func parseRecordRow(idx columnIndex, row []string) (model.Record, model.IgnoredRecords) {
	var ignored model.IgnoredRecords
	var rec model.Record

	dt, err := time.Parse(model.DatetimeLayout, idx.get(row, "datetime"))
	if err != nil {
		ignored.Datetime++
	}
	rec.Datetime = dt

	interaction, err := model.ParseInteraction(idx.get(row, "interaction"))
	if err != nil {
		ignored.Interaction++
	}
	rec.Interaction = interaction

	direction, err := model.ParseDirection(idx.get(row, "direction"))
	if err != nil {
		ignored.Direction++
	}
	rec.Direction = direction

	rec.CorrespondentID = idx.get(row, "correspondent_id")
	if rec.CorrespondentID == "" {
		ignored.CorrespondentID++
	}

	// Texts carry no duration; any duration column value is ignored for them.
	if v := idx.get(row, "call_duration"); v != "" && interaction == model.InteractionCall {
		duration, err := strconv.Atoi(v)
		if err != nil || duration < 0 {
			ignored.CallDuration++
		} else {
			rec.CallDuration = duration
		}
	}

	rec.Position = model.Position{AntennaID: idx.get(row, "antenna_id")}
	latStr := idx.get(row, "latitude")
	lonStr := idx.get(row, "longitude")
	if latStr != "" || lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			ignored.Location++
		} else {
			rec.Position.Latitude = lat
			rec.Position.Longitude = lon
			rec.Position.HasCoordinates = true
		}
	}

	return rec, ignored
}

// duplicateKey returns a string that is identical for records that describe
// the same event, matching Record.Equal semantics.
func duplicateKey(r model.Record) string {
	return fmt.Sprintf("%d|%d|%s|%d|%d|%s",
		r.Interaction, r.Direction, r.CorrespondentID,
		r.Datetime.Unix(), r.CallDuration, r.Position.Key())
}

// ReadAntennas reads an antennas CSV file mapping antenna ids to coordinates.
// Rows with unparseable or out-of-range coordinates are counted and skipped.
func ReadAntennas(path string) (*AntennasResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided evidence path is intentional
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse header of %s: %w", path, err)
	}

	idx := indexColumns(header)
	if absent := idx.missing(requiredAntennaColumns); len(absent) > 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrMissingColumns, strings.Join(absent, ", "), path)
	}

	result := &AntennasResult{
		Antennas: make(map[string]model.Position),
		Source: model.SourceFile{
			Path:       path,
			Role:       model.SourceRoleAntennas,
			Digest:     digest(data),
			IngestedAt: time.Now(),
		},
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.Rows++
		if err != nil {
			result.Invalid++
			continue
		}

		id := idx.get(row, "antenna_id")
		lat, errLat := strconv.ParseFloat(idx.get(row, "latitude"), 64)
		lon, errLon := strconv.ParseFloat(idx.get(row, "longitude"), 64)
		if id == "" || errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			result.Invalid++
			continue
		}

		result.Antennas[id] = model.Position{
			AntennaID:      id,
			Latitude:       lat,
			Longitude:      lon,
			HasCoordinates: true,
		}
	}

	result.Source.Rows = result.Rows
	return result, nil
}

// ReadMapping reads an identity mapping CSV file (phone_number,name).
// Names resolve correspondent ids to display names in reports.
func ReadMapping(path string) (*MappingResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided evidence path is intentional
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse header of %s: %w", path, err)
	}

	idx := indexColumns(header)
	if absent := idx.missing(requiredMappingColumns); len(absent) > 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrMissingColumns, strings.Join(absent, ", "), path)
	}

	result := &MappingResult{
		Names: make(map[string]string),
		Source: model.SourceFile{
			Path:       path,
			Role:       model.SourceRoleMapping,
			Digest:     digest(data),
			IngestedAt: time.Now(),
		},
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.Rows++
		if err != nil {
			result.Invalid++
			continue
		}

		number := idx.get(row, "phone_number")
		if number == "" {
			result.Invalid++
			continue
		}
		result.Names[number] = idx.get(row, "name")
	}

	result.Source.Rows = result.Rows
	return result, nil
}

// AttachAntennas fills in coordinates for records whose antenna id appears
// in the antennas map. Records that already carry GPS coordinates keep them.
func AttachAntennas(records []model.Record, antennas map[string]model.Position) {
	for i := range records {
		if records[i].Position.HasCoordinates || records[i].Position.AntennaID == "" {
			continue
		}
		if pos, ok := antennas[records[i].Position.AntennaID]; ok && pos.HasCoordinates {
			records[i].Position.Latitude = pos.Latitude
			records[i].Position.Longitude = pos.Longitude
			records[i].Position.HasCoordinates = true
		}
	}
}
