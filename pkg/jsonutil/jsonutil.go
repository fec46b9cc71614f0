// Package jsonutil has json types for APIs that are loose about how they encode
// numbers (BGA sends most ids and scores as strings, sometimes as numbers).
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Int decodes from a json number, a quoted number, an empty string or null.
type Int int64

func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*i = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("jsonutil: cannot decode %q as int", data)
		}
		n = int64(f)
	}
	*i = Int(n)
	return nil
}

// Float decodes like Int. Valid is false when the value was null or empty.
type Float struct {
	Value float64
	Valid bool
}

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = Float{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("jsonutil: cannot decode %q as float", data)
	}
	*f = Float{Value: v, Valid: true}
	return nil
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Bool decodes true/false, 1/0 and their quoted forms.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	switch s {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("jsonutil: cannot decode %q as bool", data)
	}
	return nil
}
