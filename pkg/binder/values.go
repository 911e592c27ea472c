package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// lookup returns the raw values for a parameter name, or nil if absent.
type lookup func(name string) []string

// bind fills the exported fields of the struct v points to. Fields are
// named by tag, fall back to the lowercased field name, and are skipped
// with a "-" tag. Absent parameters leave fields untouched.
func bind(v any, tag string, get lookup, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a non-nil pointer to struct", bindErr)
	}
	rv = rv.Elem()

	for _, field := range reflect.VisibleFields(rv.Type()) {
		if !field.IsExported() || field.Anonymous || len(field.Index) > 1 {
			continue
		}
		name, ok := paramName(field, tag)
		if !ok {
			continue
		}
		raw := get(name)
		if len(raw) == 0 {
			continue
		}
		if err := assign(rv.FieldByIndex(field.Index), raw); err != nil {
			return fmt.Errorf("%w: field %s: %v", bindErr, field.Name, err)
		}
	}
	return nil
}

func paramName(field reflect.StructField, tag string) (string, bool) {
	name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
	switch name {
	case "-":
		return "", false
	case "":
		return strings.ToLower(field.Name), true
	}
	return name, true
}

// assign converts raw into dst. Pointers are allocated on demand; slices
// take every value and split comma-separated ones.
func assign(dst reflect.Value, raw []string) error {
	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assign(dst.Elem(), raw)
	case reflect.Slice:
		var parts []string
		for _, r := range raw {
			for p := range strings.SplitSeq(r, ",") {
				parts = append(parts, strings.TrimSpace(p))
			}
		}
		out := reflect.MakeSlice(dst.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := scalar(out.Index(i), p); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	}
	return scalar(dst, raw[0])
}

func scalar(dst reflect.Value, s string) error {
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not an integer", s)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not an unsigned integer", s)
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		dst.SetFloat(f)
	case reflect.Bool:
		b, err := parseBool(s)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	default:
		return fmt.Errorf("unsupported kind %s", dst.Kind())
	}
	return nil
}

// parseBool also accepts the values HTML checkboxes and humans send.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no", "":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", s)
	}
	return b, nil
}
