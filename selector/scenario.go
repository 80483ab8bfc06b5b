package selector

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MBU severity presets.
const (
	MBULight    = "light"
	MBUModerate = "moderate"
	MBUHeavy    = "heavy"
)

// Constraint keys accepted by ParseConstraints.
const (
	ConstraintFITMax       = "fit_max"
	ConstraintLatencyNsMax = "latency_ns_max"
	ConstraintCarbonKgMax  = "carbon_kg_max"
)

// Constraints are optional hard ceilings. A nil field is inactive.
type Constraints struct {
	FITMax       *float64 `yaml:"fit_max,omitempty" json:"fit_max,omitempty" validate:"omitempty,gt=0"`
	LatencyNsMax *float64 `yaml:"latency_ns_max,omitempty" json:"latency_ns_max,omitempty" validate:"omitempty,gt=0"`
	CarbonKgMax  *float64 `yaml:"carbon_kg_max,omitempty" json:"carbon_kg_max,omitempty" validate:"omitempty,gt=0"`
}

// HasCeiling reports whether a FIT or latency ceiling is active, which
// selects the epsilon-constraint decision mode.
func (c Constraints) HasCeiling() bool {
	return c.FITMax != nil || c.LatencyNsMax != nil
}

// Eligible reports whether r passes the pruning ceilings (latency, carbon).
func (c Constraints) Eligible(r *MetricRecord) bool {
	if c.LatencyNsMax != nil && r.LatencyNs > *c.LatencyNsMax {
		return false
	}
	if c.CarbonKgMax != nil && r.CarbonKg > *c.CarbonKgMax {
		return false
	}
	return true
}

// Violations lists the active ceilings r breaks, in a fixed order.
func (c Constraints) Violations(r *MetricRecord) []string {
	out := make([]string, 0)
	if c.FITMax != nil && r.FIT > *c.FITMax {
		out = append(out, ConstraintFITMax)
	}
	if c.LatencyNsMax != nil && r.LatencyNs > *c.LatencyNsMax {
		out = append(out, ConstraintLatencyNsMax)
	}
	if c.CarbonKgMax != nil && r.CarbonKg > *c.CarbonKgMax {
		out = append(out, ConstraintCarbonKgMax)
	}
	return out
}

// Scenario is the operating point every candidate is evaluated under.
// Loaded from flags or from YAML via LoadScenario(path).
type Scenario struct {
	NodeNm      int         `yaml:"node_nm" json:"node_nm" validate:"required,gt=0"`
	VDD         float64     `yaml:"vdd" json:"vdd" validate:"required,gt=0"`
	TempC       *float64    `yaml:"temp_c" json:"temp_c" validate:"required,gte=-55,lte=150"`
	CapacityGiB float64     `yaml:"capacity_gib" json:"capacity_gib" validate:"required,gt=0"`
	CI          *float64    `yaml:"ci_kg_per_kwh" json:"ci_kg_per_kwh" validate:"required,gte=0"`
	BitcellUm2  float64     `yaml:"bitcell_um2" json:"bitcell_um2" validate:"required,gt=0"`
	AltitudeKm  float64     `yaml:"altitude_km" json:"altitude_km" validate:"gte=0,lte=20"`
	LatitudeDeg float64     `yaml:"latitude_deg" json:"latitude_deg" validate:"gte=-90,lte=90"`
	FluxRel     float64     `yaml:"flux_rel,omitempty" json:"flux_rel" validate:"gte=0"` // 0 = derive from location
	MBU         string      `yaml:"mbu" json:"mbu" validate:"required,oneof=light moderate heavy"`
	ScrubS      float64     `yaml:"scrub_s" json:"scrub_s" validate:"required,gt=0"`
	LifetimeH   float64     `yaml:"lifetime_h,omitempty" json:"lifetime_h" validate:"gte=0"` // 0 = one scrub sweep
	CISource    string      `yaml:"ci_source,omitempty" json:"ci_source"`
	Constraints Constraints `yaml:"constraints,omitempty" json:"constraints"`
}

// DefaultScenario returns a scenario with every optional field at its
// default and every required field unset.
func DefaultScenario() Scenario {
	return Scenario{
		LatitudeDeg: 45.0,
		MBU:         MBUModerate,
		ScrubS:      10.0,
		CISource:    "unspecified",
	}
}

// Temperature returns the junction temperature in Celsius, 0 if unset.
func (s Scenario) Temperature() float64 {
	if s.TempC == nil {
		return 0
	}
	return *s.TempC
}

// CarbonIntensity returns the grid carbon intensity in kg/kWh, 0 if unset.
func (s Scenario) CarbonIntensity() float64 {
	if s.CI == nil {
		return 0
	}
	return *s.CI
}

var scenarioValidate *validator.Validate

func init() {
	scenarioValidate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names so errors match the input the user wrote.
	scenarioValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate checks every field and returns a *ValidationError naming the
// first offending field.
func (s Scenario) Validate() error {
	err := scenarioValidate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating scenario: %w", err)
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return &ValidationError{Field: field, Reason: describeTag(fe)}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// LoadScenario reads and parses a YAML scenario file on top of DefaultScenario.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (Scenario, error) {
	sc := DefaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("reading scenario: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return sc, fmt.Errorf("parsing scenario: %w", err)
	}
	return sc, nil
}

// ParseConstraints parses "key=value,key=value" into Constraints.
// Recognized keys are fit_max, latency_ns_max and carbon_kg_max. An empty
// expression yields no constraints.
func ParseConstraints(expr string) (Constraints, error) {
	var c Constraints
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return c, nil
	}
	seen := make(map[string]bool)
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, raw, ok := strings.Cut(part, "=")
		if !ok {
			return c, &ValidationError{Field: "constraints", Reason: fmt.Sprintf("expected key=value, got %q", part)}
		}
		key = strings.TrimSpace(key)
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return c, &ValidationError{Field: "constraints." + key, Reason: fmt.Sprintf("not a number: %q", raw)}
		}
		if seen[key] {
			return c, &ValidationError{Field: "constraints." + key, Reason: "given more than once"}
		}
		seen[key] = true
		switch key {
		case ConstraintFITMax:
			c.FITMax = &v
		case ConstraintLatencyNsMax:
			c.LatencyNsMax = &v
		case ConstraintCarbonKgMax:
			c.CarbonKgMax = &v
		default:
			valid := []string{ConstraintFITMax, ConstraintLatencyNsMax, ConstraintCarbonKgMax}
			sort.Strings(valid)
			return c, &ValidationError{Field: "constraints", Reason: fmt.Sprintf("unknown key %q; valid: %s", key, strings.Join(valid, ", "))}
		}
	}
	return c, nil
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 {
	return &v
}
