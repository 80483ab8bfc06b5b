package model

import (
	"sort"

	"github.com/sram-ecc/eccsel/selector"
)

// ECC code families understood by the coverage model.
const (
	FamilySECDED  = "SEC-DED"
	FamilySECDAEC = "SEC-DAEC"
	FamilyTAEC    = "TAEC"
	FamilyDEC     = "DEC"
)

var validFamilies = map[string]bool{
	FamilySECDED:  true,
	FamilySECDAEC: true,
	FamilyTAEC:    true,
	FamilyDEC:     true,
}

// CodeInfo describes one candidate ECC configuration.
type CodeInfo struct {
	Code         string  `yaml:"code" json:"code"`
	Family       string  `yaml:"family" json:"family"`
	DataBits     int     `yaml:"data_bits" json:"data_bits"`
	ParityBits   int     `yaml:"parity_bits" json:"parity_bits"`
	LatencyNs    float64 `yaml:"latency_ns" json:"latency_ns"`
	AreaLogicMM2 float64 `yaml:"area_logic_mm2" json:"area_logic_mm2"`
	Notes        string  `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// WordBits is the stored width of one codeword.
func (c CodeInfo) WordBits() int {
	return c.DataBits + c.ParityBits
}

// Registry maps candidate codes to their descriptions.
type Registry struct {
	byCode map[string]CodeInfo
	codes  []string
}

// NewRegistry indexes codes. Later duplicates replace earlier ones.
func NewRegistry(codes []CodeInfo) *Registry {
	r := &Registry{byCode: make(map[string]CodeInfo, len(codes))}
	for _, c := range codes {
		if _, seen := r.byCode[c.Code]; !seen {
			r.codes = append(r.codes, c.Code)
		}
		r.byCode[c.Code] = c
	}
	sort.Strings(r.codes)
	return r
}

// Lookup returns the description of code.
func (r *Registry) Lookup(code string) (CodeInfo, error) {
	c, ok := r.byCode[code]
	if !ok {
		return CodeInfo{}, &selector.LookupError{Kind: "candidate", Key: code}
	}
	return c, nil
}

// Codes returns every registered code in sorted order.
func (r *Registry) Codes() []string {
	return append([]string(nil), r.codes...)
}

// All returns every registered code description, sorted by code.
func (r *Registry) All() []CodeInfo {
	out := make([]CodeInfo, 0, len(r.codes))
	for _, code := range r.codes {
		out = append(out, r.byCode[code])
	}
	return out
}
