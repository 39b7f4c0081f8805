package config

import (
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// KeyDate is a timestamp of investigative interest for a subject, such as
// the time of an incident. The location and activity around each key date
// are resolved during analysis and included in the report.
type KeyDate struct {
	// Label names the key date in reports (e.g., "incident", "arrest").
	Label string `yaml:"label"`

	// Datetime is the timestamp in "2006-01-02 15:04:05" layout,
	// matching the record CSV datetime format.
	Datetime string `yaml:"datetime"`
}

// Time parses the key date timestamp. The layout is the same one record
// CSV files use.
func (k KeyDate) Time() (time.Time, error) {
	return time.Parse(model.DatetimeLayout, k.Datetime)
}

// SubjectConfig holds subject-specific configuration for a single subject id.
// This allows customizing analysis behavior per phone line.
type SubjectConfig struct {
	// Network enables ego-network loading for this subject even when the
	// global --network flag is off.
	Network bool `yaml:"network,omitempty"`

	// Depth overrides the global network traversal depth for this subject.
	// If zero, the global NetworkDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// ExcludePatterns are correspondent ids to skip during ego-network
	// loading, matched with glob syntax. Useful for service numbers and
	// short codes (e.g., "1??", "*000").
	ExcludePatterns []string `yaml:"excludePatterns,omitempty"`

	// KeyDates are timestamps of investigative interest. Each one is
	// resolved to a location and surrounding activity in the report.
	KeyDates []KeyDate `yaml:"keyDates,omitempty"`

	// Antennas overrides the global antennas CSV path for this subject.
	Antennas string `yaml:"antennas,omitempty"`

	// Mapping overrides the global id-mapping CSV path for this subject.
	Mapping string `yaml:"mapping,omitempty"`
}

// File represents the structure of the .cdrscan configuration file.
type File struct {
	// Subjects maps subject ids to their subject-specific configurations.
	// Keys are the record CSV file names without the .csv extension.
	Subjects map[string]SubjectConfig `yaml:"subjects,omitempty"`

	// Defaults contains default subject configuration applied to all
	// subjects unless overridden in the subject-specific configuration.
	Defaults SubjectConfig `yaml:"defaults,omitempty"`
}

// GetSubjectConfig returns the configuration for a specific subject id.
// It merges the subject-specific configuration with defaults.
func (cf *File) GetSubjectConfig(subjectID string) SubjectConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with subject-specific configuration if present
	if subjectConfig, ok := cf.Subjects[subjectID]; ok {
		if subjectConfig.Network {
			result.Network = true
		}
		if subjectConfig.Depth != 0 {
			result.Depth = subjectConfig.Depth
		}
		if len(subjectConfig.ExcludePatterns) > 0 {
			result.ExcludePatterns = subjectConfig.ExcludePatterns
		}
		if len(subjectConfig.KeyDates) > 0 {
			result.KeyDates = subjectConfig.KeyDates
		}
		if subjectConfig.Antennas != "" {
			result.Antennas = subjectConfig.Antennas
		}
		if subjectConfig.Mapping != "" {
			result.Mapping = subjectConfig.Mapping
		}
	}

	return result
}
