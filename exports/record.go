package exports

import (
	"encoding/json"
	"fmt"
)

// Record is one export parsed from the exports file.
// The JSON keys are consumed by existing callers and must not change.
type Record struct {
	Name       string `json:"Name"`
	Path       string `json:"Path"`
	ClientSpec string `json:"IP"`
	Options    string `json:"Permissions"`
}

// Line renders the record as an exports file line (without newline).
func (r Record) Line() string {
	return fmt.Sprintf("%s %s(%s)", r.Path, r.ClientSpec, r.Options)
}

// Marshal renders records as a JSON array; no records gives "[]".
func Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
