package character

import (
	"encoding/json"
	"strings"
)

// ChoiceValue holds the value of a made choice: a single selection or a
// multi-selection. It marshals as a bare string or a string array so
// stored builds stay readable.
type ChoiceValue struct {
	values []string
	multi  bool
}

// SingleValue creates a single-selection value
func SingleValue(value string) ChoiceValue {
	return ChoiceValue{values: []string{value}}
}

// MultiValue creates a multi-selection value
func MultiValue(values ...string) ChoiceValue {
	copied := make([]string, len(values))
	copy(copied, values)
	return ChoiceValue{values: copied, multi: true}
}

// Values returns every selected value
func (v ChoiceValue) Values() []string {
	return v.values
}

// Single returns the first selected value
func (v ChoiceValue) Single() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

// IsMulti reports whether the value is a multi-selection
func (v ChoiceValue) IsMulti() bool {
	return v.multi
}

// IsZero reports whether no selection is held
func (v ChoiceValue) IsZero() bool {
	return len(v.values) == 0
}

// Contains reports whether a value is among the selections
func (v ChoiceValue) Contains(value string) bool {
	for _, existing := range v.values {
		if existing == value {
			return true
		}
	}
	return false
}

// Equal compares two choice values by their selections
func (v ChoiceValue) Equal(other ChoiceValue) bool {
	if len(v.values) != len(other.values) {
		return false
	}
	for i, value := range v.values {
		if other.values[i] != value {
			return false
		}
	}
	return true
}

// String renders the selections for display
func (v ChoiceValue) String() string {
	return strings.Join(v.values, ", ")
}

// MarshalJSON implements json.Marshaler
func (v ChoiceValue) MarshalJSON() ([]byte, error) {
	if v.multi {
		return json.Marshal(v.values)
	}
	return json.Marshal(v.Single())
}

// UnmarshalJSON implements json.Unmarshaler
func (v *ChoiceValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = SingleValue(single)
		return nil
	}

	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return err
	}
	*v = MultiValue(multi...)
	return nil
}
