package quality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// SuiteSpec is a declarative expectation suite loaded from YAML,
// overriding the built-in flight suite for ad hoc validation runs.
type SuiteSpec struct {
	Dataset      string            `yaml:"dataset"`
	Expectations []ExpectationSpec `yaml:"expectations"`
}

// ExpectationSpec is one declarative expectation. Which fields apply
// depends on the kind; Mostly defaults to 1.0 when omitted.
type ExpectationSpec struct {
	Kind     string   `yaml:"kind"`
	Column   string   `yaml:"column"`
	Mostly   *float64 `yaml:"mostly"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	MinCount *int     `yaml:"min_count"`
	MaxCount *int     `yaml:"max_count"`
	Values   []any    `yaml:"values"`
	Pattern  string   `yaml:"pattern"`
}

func (e ExpectationSpec) mostly() float64 {
	if e.Mostly == nil {
		return 1.0
	}
	return *e.Mostly
}

// suiteAppliers maps declarative kinds to the validator methods they
// drive.
var suiteAppliers = map[string]func(*Validator, ExpectationSpec){
	types.ExpectColumnExists: func(v *Validator, e ExpectationSpec) {
		v.ExpectColumnToExist(e.Column)
	},
	types.ExpectNotNull: func(v *Validator, e ExpectationSpec) {
		v.ExpectColumnValuesToNotBeNull(e.Column, e.mostly())
	},
	types.ExpectBetween: func(v *Validator, e ExpectationSpec) {
		v.ExpectColumnValuesToBeBetween(e.Column, e.Min, e.Max, e.mostly())
	},
	types.ExpectInSet: func(v *Validator, e ExpectationSpec) {
		v.ExpectColumnValuesToBeInSet(e.Column, e.Values, e.mostly())
	},
	types.ExpectUnique: func(v *Validator, e ExpectationSpec) {
		v.ExpectColumnValuesToBeUnique(e.Column)
	},
	types.ExpectMatchesPattern: func(v *Validator, e ExpectationSpec) {
		v.ExpectColumnValuesToMatchRegex(e.Column, e.Pattern, e.mostly())
	},
	types.ExpectRowCountBetween: func(v *Validator, e ExpectationSpec) {
		minCount := 0
		if e.MinCount != nil {
			minCount = *e.MinCount
		}
		v.ExpectRowCountToBeBetween(minCount, e.MaxCount)
	},
	types.ExpectColumnMeanInside: func(v *Validator, e ExpectationSpec) {
		v.ExpectColumnMeanToBeBetween(e.Column, e.Min, e.Max)
	},
}

// ParseSuite decodes a YAML suite and rejects unknown expectation kinds
// up front, before any dataset is read.
func ParseSuite(data []byte) (*SuiteSpec, error) {
	var spec SuiteSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}
	if len(spec.Expectations) == 0 {
		return nil, fmt.Errorf("suite defines no expectations")
	}
	for i, e := range spec.Expectations {
		if _, ok := suiteAppliers[e.Kind]; !ok {
			return nil, fmt.Errorf("expectation %d: unknown kind %q", i, e.Kind)
		}
	}
	return &spec, nil
}

// LoadSuite reads and parses a YAML suite file.
func LoadSuite(path string) (*SuiteSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	return ParseSuite(data)
}

// Apply builds a validator over the dataset with the suite's expectations
// recorded in declaration order.
func (s *SuiteSpec) Apply(ds *types.Dataset) *Validator {
	name := s.Dataset
	if name == "" {
		name = "dataset"
	}
	v := New(ds, name)
	for _, e := range s.Expectations {
		suiteAppliers[e.Kind](v, e)
	}
	return v
}
