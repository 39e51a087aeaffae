// ABOUTME: Schema-less structured configuration values for capabilities
// ABOUTME: JSON-backed map values with typed accessor helpers
package resource

import (
	"encoding/json"
	"fmt"
	"math"
)

// Config is a schema-less structured value used to configure any capability
// instance. Values come from JSON, so numbers arrive as float64, nested
// structures as map[string]any and []any. The framework validates only what
// the accessors are asked for; deep validation belongs to each concrete
// implementation.
type Config map[string]any

// ParseConfig decodes a JSON object into a Config.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &ConfigError{Field: "", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return c, nil
}

// Float returns a numeric field as float64.
func (c Config) Float(key string) (float64, error) {
	v, ok := c[key]
	if !ok {
		return 0, &ConfigError{Field: key, Reason: "missing"}
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, &ConfigError{Field: key, Reason: fmt.Sprintf("expected number, got %T", v)}
	}
	return f, nil
}

// FloatOr returns a numeric field, or def when the field is absent.
func (c Config) FloatOr(key string, def float64) (float64, error) {
	if _, ok := c[key]; !ok {
		return def, nil
	}
	return c.Float(key)
}

// Int returns a numeric field as int, rejecting fractional values.
func (c Config) Int(key string) (int, error) {
	f, err := c.Float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &ConfigError{Field: key, Reason: fmt.Sprintf("expected integer, got %v", f)}
	}
	return int(f), nil
}

// IntOr returns an integer field, or def when the field is absent.
func (c Config) IntOr(key string, def int) (int, error) {
	if _, ok := c[key]; !ok {
		return def, nil
	}
	return c.Int(key)
}

// String returns a string field.
func (c Config) String(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", &ConfigError{Field: key, Reason: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ConfigError{Field: key, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// StringOr returns a string field, or def when the field is absent.
func (c Config) StringOr(key, def string) (string, error) {
	if _, ok := c[key]; !ok {
		return def, nil
	}
	return c.String(key)
}

// Bool returns a boolean field.
func (c Config) Bool(key string) (bool, error) {
	v, ok := c[key]
	if !ok {
		return false, &ConfigError{Field: key, Reason: "missing"}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ConfigError{Field: key, Reason: fmt.Sprintf("expected bool, got %T", v)}
	}
	return b, nil
}

// BoolOr returns a boolean field, or def when the field is absent.
func (c Config) BoolOr(key string, def bool) (bool, error) {
	if _, ok := c[key]; !ok {
		return def, nil
	}
	return c.Bool(key)
}

// List returns an array field.
func (c Config) List(key string) ([]any, error) {
	v, ok := c[key]
	if !ok {
		return nil, &ConfigError{Field: key, Reason: "missing"}
	}
	l, ok := v.([]any)
	if !ok {
		return nil, &ConfigError{Field: key, Reason: fmt.Sprintf("expected array, got %T", v)}
	}
	return l, nil
}

// Section returns a nested object field as a Config.
func (c Config) Section(key string) (Config, error) {
	v, ok := c[key]
	if !ok {
		return nil, &ConfigError{Field: key, Reason: "missing"}
	}
	switch m := v.(type) {
	case map[string]any:
		return Config(m), nil
	case Config:
		return m, nil
	default:
		return nil, &ConfigError{Field: key, Reason: fmt.Sprintf("expected object, got %T", v)}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
