package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidFunctions = errors.New("invalid functions")

// FunctionSpec describes one generated output column.
// Target is both the source column name and the argument of fixed/send_hour.
type FunctionSpec struct {
	Name   string  `json:"name"`
	Fn     string  `json:"fn"`
	Target *string `json:"target,omitempty"`
}

// TargetOr returns the target or def when absent.
func (f FunctionSpec) TargetOr(def string) string {
	if f.Target == nil {
		return def
	}
	return *f.Target
}

// FunctionSpecs keeps the caller's column order.
type FunctionSpecs []FunctionSpec

// UnmarshalJSON accepts either a list of specs or an object keyed by output
// name ({"city_up": {"fn": "upcase", "target": "city"}}). Key order is kept.
func (s *FunctionSpecs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	switch data[0] {
	case '[':
		var list []FunctionSpec
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		if _, err := dec.Token(); err != nil {
			return err
		}
		var out FunctionSpecs
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			name, _ := tok.(string)

			var body struct {
				Fn     string  `json:"fn"`
				Target *string `json:"target"`
			}
			if err := dec.Decode(&body); err != nil {
				return fmt.Errorf("function %q: %w", name, err)
			}
			out = append(out, FunctionSpec{Name: name, Fn: body.Fn, Target: body.Target})
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("%w: expected list or object", ErrInvalidFunctions)
	}
}

// Validate rejects empty and repeated output names.
func (s FunctionSpecs) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.Name == "" {
			return fmt.Errorf("%w: empty output name", ErrInvalidFunctions)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: duplicate output name %q", ErrInvalidFunctions, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
