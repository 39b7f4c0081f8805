package ingest

import (
	"path/filepath"
	"testing"
)

// checkByName finds a check in a validation result.
func checkByName(t *testing.T, result *ValidationResult, name string) Check {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in %+v", name, result.Checks)
	return Check{}
}

// TestValidateRecordsFile tests record-file validation.
func TestValidateRecordsFile(t *testing.T) {
	t.Parallel()

	t.Run("clean file passes all checks", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "ego.csv", recordsContent(
			"2024-03-01 08:00:00,call,out,alice,120,A1,42.36,-71.06",
			"2024-03-01 09:00:00,text,in,bob,,,,",
		))

		result := ValidateRecordsFile(path)
		if result.Failed() {
			t.Errorf("expected no failures, got %+v", result.Checks)
		}

		load := checkByName(t, result, "load test")
		if load.Status != CheckOK {
			t.Errorf("got load test status %v, expected OK", load.Status)
		}
	})

	t.Run("missing file fails fast", func(t *testing.T) {
		t.Parallel()

		result := ValidateRecordsFile(filepath.Join(t.TempDir(), "ghost.csv"))
		if !result.Failed() {
			t.Error("expected failure for missing file")
		}
		if len(result.Checks) != 1 {
			t.Errorf("got %d checks, expected 1 (fail fast)", len(result.Checks))
		}
	})

	t.Run("missing required columns fail", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "ego.csv", "datetime,direction\n2024-03-01 08:00:00,out\n")

		result := ValidateRecordsFile(path)
		if !result.Failed() {
			t.Error("expected failure for missing columns")
		}

		check := checkByName(t, result, "required columns")
		if check.Status != CheckFail {
			t.Errorf("got status %v, expected FAIL", check.Status)
		}
	})

	t.Run("bad field values fail their checks", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "ego.csv", recordsContent(
			"03/01/2024 08:00,call,out,alice,,,,",
			"2024-03-01 09:00:00,email,out,alice,,,,",
			"2024-03-01 10:00:00,call,sideways,alice,,,,",
			"2024-03-01 11:00:00,text,out,bob,,,,",
		))

		result := ValidateRecordsFile(path)
		if !result.Failed() {
			t.Error("expected failure")
		}

		if c := checkByName(t, result, "datetime format"); c.Status != CheckFail {
			t.Errorf("datetime format: got %v, expected FAIL", c.Status)
		}
		if c := checkByName(t, result, "interaction values"); c.Status != CheckFail {
			t.Errorf("interaction values: got %v, expected FAIL", c.Status)
		}
		if c := checkByName(t, result, "direction values"); c.Status != CheckFail {
			t.Errorf("direction values: got %v, expected FAIL", c.Status)
		}
	})

	t.Run("no optional columns warns", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "ego.csv",
			"datetime,interaction,direction,correspondent_id\n2024-03-01 08:00:00,call,out,alice\n")

		result := ValidateRecordsFile(path)
		if result.Failed() {
			t.Errorf("expected no failure, got %+v", result.Checks)
		}
		if c := checkByName(t, result, "optional columns"); c.Status != CheckWarn {
			t.Errorf("got %v, expected WARN", c.Status)
		}
		if result.Warnings() == 0 {
			t.Error("expected at least one warning")
		}
	})

	t.Run("file with only invalid rows fails load test", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "ego.csv", recordsContent(
			"garbage,call,out,alice,,,,",
		))

		result := ValidateRecordsFile(path)
		if c := checkByName(t, result, "load test"); c.Status != CheckFail {
			t.Errorf("got %v, expected FAIL", c.Status)
		}
	})

	t.Run("duplicates warn", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "ego.csv", recordsContent(
			"2024-03-01 08:00:00,call,out,alice,120,,,",
			"2024-03-01 08:00:00,call,out,alice,120,,,",
		))

		result := ValidateRecordsFile(path)
		if result.Failed() {
			t.Errorf("expected no failure, got %+v", result.Checks)
		}
		if c := checkByName(t, result, "duplicate rows"); c.Status != CheckWarn {
			t.Errorf("got %v, expected WARN", c.Status)
		}
	})
}

// TestValidateAntennasFile tests antennas-file validation.
func TestValidateAntennasFile(t *testing.T) {
	t.Parallel()

	t.Run("clean file passes", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "antennas.csv",
			"antenna_id,latitude,longitude\nA1,42.36,-71.06\n")

		result := ValidateAntennasFile(path)
		if result.Failed() {
			t.Errorf("expected no failures, got %+v", result.Checks)
		}
	})

	t.Run("missing columns fail", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "antennas.csv", "id,lat,lon\nA1,42.0,-71.0\n")

		result := ValidateAntennasFile(path)
		if !result.Failed() {
			t.Error("expected failure for missing columns")
		}
	})

	t.Run("out-of-range coordinates warn", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "antennas.csv",
			"antenna_id,latitude,longitude\nA1,95.0,-71.0\nA2,42.0,-71.0\n")

		result := ValidateAntennasFile(path)
		if result.Failed() {
			t.Errorf("expected no failure, got %+v", result.Checks)
		}
		if c := checkByName(t, result, "coordinates"); c.Status != CheckWarn {
			t.Errorf("got %v, expected WARN", c.Status)
		}
	})
}

// TestValidateMappingFile tests identity-mapping validation.
func TestValidateMappingFile(t *testing.T) {
	t.Parallel()

	t.Run("clean file passes", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "_ID_MAPPING.csv",
			"phone_number,name\n+15550001,Alice Demo\n")

		result := ValidateMappingFile(path)
		if result.Failed() {
			t.Errorf("expected no failures, got %+v", result.Checks)
		}
	})

	t.Run("duplicate numbers warn", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "_ID_MAPPING.csv",
			"phone_number,name\n+15550001,Alice\n+15550001,Alias\n")

		result := ValidateMappingFile(path)
		if result.Failed() {
			t.Errorf("expected no failure, got %+v", result.Checks)
		}
		if c := checkByName(t, result, "duplicate numbers"); c.Status != CheckWarn {
			t.Errorf("got %v, expected WARN", c.Status)
		}
	})
}

// TestListSubjects tests subject discovery in a data directory.
func TestListSubjects(t *testing.T) {
	t.Parallel()

	t.Run("lists sorted subject ids", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "bravo.csv", recordsContent("2024-03-01 08:00:00,call,out,x,,,,"))
		writeFile(t, dir, "alpha.csv", recordsContent("2024-03-01 08:00:00,call,out,x,,,,"))
		writeFile(t, dir, "antennas.csv", "antenna_id,latitude,longitude\n")
		writeFile(t, dir, "_ID_MAPPING.csv", "phone_number,name\n")
		writeFile(t, dir, "notes.txt", "not a csv")

		subjects, err := ListSubjects(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{"alpha", "bravo"}
		if len(subjects) != len(expected) {
			t.Fatalf("got %v, expected %v", subjects, expected)
		}
		for i := range expected {
			if subjects[i] != expected[i] {
				t.Errorf("got %v, expected %v", subjects, expected)
			}
		}
	})

	t.Run("returns error for missing directory", func(t *testing.T) {
		t.Parallel()

		if _, err := ListSubjects(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

// TestCheckStatusString tests the status display form.
func TestCheckStatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{CheckOK, "OK"},
		{CheckWarn, "WARN"},
		{CheckFail, "FAIL"},
		{CheckStatus(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("got %q, expected %q", got, tt.expected)
		}
	}
}
