package modelstate

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// Redacted is how a SensitiveValue renders everywhere.
const Redacted = "[REDACTED]"

// Summary maps attribute names to normalized scalars or SensitiveValue.
type Summary map[string]any

// SensitiveValue holds a value that must not show up in logs or diffs.
type SensitiveValue struct {
	value any
}

func NewSensitiveValue(v any) SensitiveValue {
	return SensitiveValue{value: v}
}

// Reveal returns the wrapped value.
func (s SensitiveValue) Reveal() any {
	return s.value
}

func (s SensitiveValue) String() string {
	return Redacted
}

func (s SensitiveValue) GoString() string {
	return "modelstate.SensitiveValue{" + Redacted + "}"
}

// Format keeps every fmt verb, %#v and %+v included, from printing the value.
func (s SensitiveValue) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = io.WriteString(f, s.GoString())
		return
	}
	_, _ = io.WriteString(f, Redacted)
}

func (s SensitiveValue) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Redacted + `"`), nil
}

func (s SensitiveValue) MarshalText() ([]byte, error) {
	return []byte(Redacted), nil
}

func (s SensitiveValue) MarshalYAML() (any, error) {
	return Redacted, nil
}

func (s SensitiveValue) LogValue() slog.Value {
	return slog.StringValue(Redacted)
}

// SummarizeChanges normalizes every change, wrapping hidden attributes in SensitiveValue.
func SummarizeChanges(changes map[string]any, hidden []string) Summary {
	summaries := make(Summary, len(changes))
	for attribute, v := range changes {
		if slices.Contains(hidden, attribute) {
			summaries[attribute] = NewSensitiveValue(v)
		} else {
			summaries[attribute] = NormalizeValue(v)
		}
	}
	return summaries
}
