// Package validator sanitizes and checks submitted form fields.
//
// A Pipeline is an ordered list of Fields, each carrying a chain of pure
// Steps. Running a pipeline never mutates the submitted values: it returns a
// Result holding the sanitized values alongside every failure, in the order
// the steps ran.
package validator

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = playground.New()

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors is the ordered list of failures from one pipeline run.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Step transforms a field value or rejects it. The error text becomes the
// FieldError message.
type Step func(value string) (string, error)

// Field describes how one form key is sanitized.
type Field struct {
	Name     string
	Steps    []Step
	Optional bool // skip entirely when the raw value is empty
	Multi    bool // validate every submitted value as a list
}

// Pipeline is an ordered set of field rules.
type Pipeline []Field

// Result is the sanitized record plus the failures collected on the way.
type Result struct {
	Values map[string]string
	Lists  map[string][]string
	Errors Errors
}

// Valid reports whether every rule passed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Get returns the sanitized scalar value of name.
func (r Result) Get(name string) string {
	return r.Values[name]
}

// List returns the sanitized values of a multi-value field, never nil.
func (r Result) List(name string) []string {
	if l, ok := r.Lists[name]; ok {
		return l
	}
	return []string{}
}

// Run applies the pipeline to form. Every step of every field runs; a
// failing step leaves the value as it was and the next step continues.
func (p Pipeline) Run(form url.Values) Result {
	res := Result{
		Values: make(map[string]string),
		Lists:  make(map[string][]string),
	}

	for _, f := range p {
		if f.Multi {
			items := Normalize(form, f.Name)
			out := make([]string, 0, len(items))
			for _, item := range items {
				out = append(out, f.apply(item, &res.Errors))
			}
			res.Lists[f.Name] = out
			continue
		}

		raw := form.Get(f.Name)
		if f.Optional && raw == "" {
			res.Values[f.Name] = ""
			continue
		}
		res.Values[f.Name] = f.apply(raw, &res.Errors)
	}

	return res
}

func (f Field) apply(value string, errs *Errors) string {
	for _, step := range f.Steps {
		next, err := step(value)
		if err != nil {
			*errs = append(*errs, FieldError{Field: f.Name, Message: err.Error()})
			continue
		}
		value = next
	}
	return value
}

// Normalize returns the submitted values of key as a list: absent keys give
// an empty list, a single value a one-element list.
func Normalize(form url.Values, key string) []string {
	values, ok := form[key]
	if !ok || values == nil {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Sanitize is the standard required text rule: trim, reject empty, escape.
func Sanitize(name, message string, extra ...Step) Field {
	steps := []Step{Trim(), NotEmpty(message), Escape()}
	return Field{Name: name, Steps: append(steps, extra...)}
}

// Text builds a field from arbitrary steps.
func Text(name string, steps ...Step) Field {
	return Field{Name: name, Steps: steps}
}

// OptionalDate accepts an empty value or an ISO-8601 date, normalised to YYYY-MM-DD.
func OptionalDate(name, message string) Field {
	return Field{Name: name, Optional: true, Steps: []Step{Trim(), Date(message)}}
}

// List applies steps to every submitted value of name.
func List(name string, steps ...Step) Field {
	return Field{Name: name, Multi: true, Steps: steps}
}

func Trim() Step {
	return func(v string) (string, error) {
		return strings.TrimSpace(v), nil
	}
}

func NotEmpty(message string) Step {
	return func(v string) (string, error) {
		if len(v) == 0 {
			return v, errors.New(message)
		}
		return v, nil
	}
}

// escaper mirrors the HTML escaping applied by common form sanitizers.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	"`", "&#96;",
)

func Escape() Step {
	return func(v string) (string, error) {
		return escaper.Replace(v), nil
	}
}

// Tag checks the value against a go-playground validation tag such as
// "alphanum" or "max=100".
func Tag(tag, message string) Step {
	return func(v string) (string, error) {
		if err := validate.Var(v, tag); err != nil {
			return v, errors.New(message)
		}
		return v, nil
	}
}

func Alphanumeric(message string) Step {
	return Tag("alphanum", message)
}

func MaxLength(n int, message string) Step {
	return Tag("max="+strconv.Itoa(n), message)
}

// OneOf accepts only the listed values.
func OneOf(message string, allowed ...string) Step {
	return Tag("oneof="+strings.Join(allowed, " "), message)
}

// Default substitutes def for an empty value.
func Default(def string) Step {
	return func(v string) (string, error) {
		if v == "" {
			return def, nil
		}
		return v, nil
	}
}

// ObjectID requires a 24 character hex document id.
func ObjectID(message string) Step {
	return func(v string) (string, error) {
		if !primitive.IsValidObjectID(v) {
			return v, errors.New(message)
		}
		return v, nil
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// ParseDate parses the ISO-8601 forms accepted by Date.
func ParseDate(v string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func Date(message string) Step {
	return func(v string) (string, error) {
		t, err := ParseDate(v)
		if err != nil {
			return v, errors.New(message)
		}
		return t.Format("2006-01-02"), nil
	}
}

// OptionalTime converts a sanitized date value into a pointer, nil when empty.
func OptionalTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := ParseDate(v)
	if err != nil {
		return nil
	}
	return &t
}
