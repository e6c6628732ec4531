package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPayload is returned when a body does not have the shape of the
// variant named by its type: a field is missing, or a value has the wrong JSON
// kind.
var ErrInvalidPayload = errors.New("invalid payload")

// checkShape verifies that raw could be decoded into a value of type t without
// loss or coercion. Struct fields are required unless tagged omitempty, and
// every value must have the JSON kind of its Go kind: a string where a string
// is expected, an integer where an integer is expected, and so on. Nil-able
// types (pointers, slices, maps) accept null.
func checkShape(raw json.RawMessage, t reflect.Type, path string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return errors.Wrapf(ErrInvalidPayload, "field %q is empty", path)
	}

	null := bytes.Equal(raw, []byte("null"))

	switch t.Kind() {
	case reflect.Interface:
		return nil
	case reflect.Ptr:
		if null {
			return nil
		}
		return checkShape(raw, t.Elem(), path)
	case reflect.Struct:
		if raw[0] != '{' {
			return mismatch(path, "an object", raw)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return errors.Wrapf(err, "field %q", path)
		}
		return checkFields(fields, t, path)
	case reflect.Map:
		if null {
			return nil
		}
		if raw[0] != '{' {
			return mismatch(path, "an object", raw)
		}
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return errors.Wrapf(err, "field %q", path)
		}
		for k, v := range entries {
			if err := checkShape(v, t.Elem(), join(path, k)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice, reflect.Array:
		if null && t.Kind() == reflect.Slice {
			return nil
		}
		// Byte slices travel as base64 strings.
		if t.Elem().Kind() == reflect.Uint8 {
			if raw[0] != '"' {
				return mismatch(path, "a string", raw)
			}
			return nil
		}
		if raw[0] != '[' {
			return mismatch(path, "an array", raw)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return errors.Wrapf(err, "field %q", path)
		}
		for i, v := range items {
			if err := checkShape(v, t.Elem(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.String:
		if raw[0] != '"' {
			return mismatch(path, "a string", raw)
		}
	case reflect.Bool:
		if !bytes.Equal(raw, []byte("true")) && !bytes.Equal(raw, []byte("false")) {
			return mismatch(path, "a boolean", raw)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !isNumber(raw) || bytes.ContainsAny(raw, ".eE") {
			return mismatch(path, "an integer", raw)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !isNumber(raw) || raw[0] == '-' || bytes.ContainsAny(raw, ".eE") {
			return mismatch(path, "a non-negative integer", raw)
		}
	case reflect.Float32, reflect.Float64:
		if !isNumber(raw) {
			return mismatch(path, "a number", raw)
		}
	}

	return nil
}

func checkFields(fields map[string]json.RawMessage, t reflect.Type, path string) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}

		name, omitempty, skip := fieldName(f)
		if skip {
			continue
		}

		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get("json") == "" {
			if err := checkFields(fields, f.Type, path); err != nil {
				return err
			}
			continue
		}

		raw, ok := fields[name]
		if !ok || (omitempty && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))) {
			if omitempty {
				continue
			}
			return errors.Wrapf(ErrInvalidPayload, "missing field %q", join(path, name))
		}

		if err := checkShape(raw, f.Type, join(path, name)); err != nil {
			return err
		}
	}
	return nil
}

// fieldName returns the wire name of a struct field, following its json tag.
func fieldName(f reflect.StructField) (name string, omitempty bool, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func isNumber(raw []byte) bool {
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func mismatch(path, want string, raw []byte) error {
	if len(raw) > 32 {
		raw = append(raw[:29:29], "..."...)
	}
	return errors.Wrapf(ErrInvalidPayload, "field %q should be %s, not %s", path, want, raw)
}
