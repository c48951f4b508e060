// Package validate checks request payloads before anything touches the store.
package validate

import "strings"

// FieldError is a single validation failure keyed by JSON field name.
type FieldError struct {
	Field   string
	Message string
}

// Errors collects field errors in the order they were found.
type Errors struct {
	list []FieldError
}

// Add records a failure for field.
func (e *Errors) Add(field, message string) {
	e.list = append(e.list, FieldError{Field: field, Message: message})
}

// Empty reports whether no failure was recorded.
func (e *Errors) Empty() bool {
	return e == nil || len(e.list) == 0
}

// List returns the recorded failures.
func (e *Errors) List() []FieldError {
	if e == nil {
		return nil
	}
	return append([]FieldError(nil), e.list...)
}

// Has reports whether field has at least one failure.
func (e *Errors) Has(field string) bool {
	for _, fe := range e.List() {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Fields renders the failures as a field -> message map, joining several
// messages for one field with a space.
func (e *Errors) Fields() map[string]string {
	out := make(map[string]string)
	for _, fe := range e.List() {
		if prev, ok := out[fe.Field]; ok {
			out[fe.Field] = prev + " " + fe.Message
			continue
		}
		out[fe.Field] = fe.Message
	}
	return out
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.list))
	for _, fe := range e.list {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when it is empty.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Single builds an Errors holding one failure.
func Single(field, message string) *Errors {
	e := &Errors{}
	e.Add(field, message)
	return e
}
