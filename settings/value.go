// Package settings persists export options per operation scope and turns
// them into validated configurations.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mwantia/modexport/data"
)

// Kind is the type of a stored setting value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

func ParseKind(name string) (Kind, error) {
	switch name {
	case "string":
		return KindString, nil
	case "bool":
		return KindBool, nil
	case "int":
		return KindInt, nil
	}

	return KindString, fmt.Errorf("%w: unknown value kind '%s'", data.ErrInvalidSetting, name)
}

// Value is a bool, string or int setting, kept in its text form.
type Value struct {
	Kind Kind
	Raw  string
}

func Bool(b bool) Value {
	return Value{Kind: KindBool, Raw: strconv.FormatBool(b)}
}

func String(s string) Value {
	return Value{Kind: KindString, Raw: s}
}

func Int(i int) Value {
	return Value{Kind: KindInt, Raw: strconv.Itoa(i)}
}

// NewValue restores a value from its kind name and text form.
func NewValue(kind, raw string) (Value, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Value{}, err
	}

	return Value{Kind: k, Raw: raw}, nil
}

// Infer guesses the kind of a value typed by a user.
func Infer(raw string) Value {
	if b, err := strconv.ParseBool(raw); err == nil {
		return Bool(b)
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return Int(i)
	}

	return String(raw)
}

// AsBool returns the value as bool. Strings holding a boolean are accepted.
func (v Value) AsBool() (bool, error) {
	if v.Kind == KindInt {
		return false, fmt.Errorf("%w: expected bool, got int %s", data.ErrInvalidSetting, v.Raw)
	}

	b, err := strconv.ParseBool(strings.TrimSpace(v.Raw))
	if err != nil {
		return false, fmt.Errorf("%w: expected bool, got '%s'", data.ErrInvalidSetting, v.Raw)
	}

	return b, nil
}

// AsInt returns the value as int. Strings holding an integer are accepted.
func (v Value) AsInt() (int, error) {
	if v.Kind == KindBool {
		return 0, fmt.Errorf("%w: expected int, got bool %s", data.ErrInvalidSetting, v.Raw)
	}

	i, err := strconv.Atoi(strings.TrimSpace(v.Raw))
	if err != nil {
		return 0, fmt.Errorf("%w: expected int, got '%s'", data.ErrInvalidSetting, v.Raw)
	}

	return i, nil
}

// AsString returns the value as string. Only string values are accepted.
func (v Value) AsString() (string, error) {
	if v.Kind != KindString {
		return "", fmt.Errorf("%w: expected string, got %s %s", data.ErrInvalidSetting, v.Kind, v.Raw)
	}

	return v.Raw, nil
}

func (v Value) String() string {
	return v.Raw
}

// Encode returns "<kind>:<raw>", used by stores without a kind column.
func (v Value) Encode() string {
	return v.Kind.String() + ":" + v.Raw
}

// Decode parses the output of Encode.
func Decode(encoded string) (Value, error) {
	kind, raw, ok := strings.Cut(encoded, ":")
	if !ok {
		return Value{}, fmt.Errorf("%w: malformed value '%s'", data.ErrInvalidSetting, encoded)
	}

	return NewValue(kind, raw)
}
