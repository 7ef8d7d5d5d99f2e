package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float accepts a JSON number or numeric string. Anything unparsable,
// including null, the empty string, NaN and infinities, decodes as 0.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	*f = 0
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case float64:
		*f = Float(x)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil && finite(n) {
			*f = Float(n)
		}
	}
	return nil
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// toInt rejects values an int cannot hold.
func toInt(n float64) (Int, bool) {
	if !finite(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return Int(n), true
}

// Int accepts a JSON number or numeric string. null decodes as 0; other
// values are rejected.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	*i = 0
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		n, ok := toInt(x)
		if !ok {
			return fmt.Errorf("invalid integer %s", b)
		}
		*i = n
		return nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", x)
		}
		n, ok := toInt(f)
		if !ok {
			return fmt.Errorf("invalid integer %q", x)
		}
		*i = n
		return nil
	}
	return fmt.Errorf("invalid integer %s", b)
}

// Bool coerces truthy input: true, non-zero numbers and non-empty strings other
// than "false", "0", "no" and "off" are true.
type Bool bool

func (t *Bool) UnmarshalJSON(b []byte) error {
	*t = false
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case bool:
		*t = Bool(x)
	case float64:
		*t = x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "false", "0", "no", "off":
		default:
			*t = true
		}
	case []any, map[string]any:
		*t = true
	}
	return nil
}
