package config

import (
	"fmt"

	"github.com/spf13/cast"
)

// AttributeMap is a loosely typed bag of simulation tunables -- scenario
// knobs that don't warrant a dedicated struct field (per-scenario IDM
// overrides, feature toggles for in-progress work). Mirrors the teacher's
// config.AttributeMap, generalized to use github.com/spf13/cast for the
// type coercion the teacher did by hand with type-switches.
type AttributeMap map[string]interface{}

// Has reports whether name is present.
func (am AttributeMap) Has(name string) bool {
	_, ok := am[name]
	return ok
}

// Bool returns the named attribute as a bool, or def if absent. Panics if
// present but not bool-like, matching the teacher's AttributeMap contract:
// a malformed attribute is a config-authoring bug, not a runtime condition
// to recover from.
func (am AttributeMap) Bool(name string, def bool) bool {
	v, ok := am[name]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		panic(fmt.Errorf("config: attribute %q: wanted a bool: %w", name, err))
	}
	return b
}

// Float64 returns the named attribute as a float64, or def if absent.
func (am AttributeMap) Float64(name string, def float64) float64 {
	v, ok := am[name]
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		panic(fmt.Errorf("config: attribute %q: wanted a float64: %w", name, err))
	}
	return f
}

// Int returns the named attribute as an int, or def if absent.
func (am AttributeMap) Int(name string, def int) int {
	v, ok := am[name]
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		panic(fmt.Errorf("config: attribute %q: wanted an int: %w", name, err))
	}
	return i
}

// String returns the named attribute as a string, or def if absent.
func (am AttributeMap) String(name, def string) string {
	v, ok := am[name]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		panic(fmt.Errorf("config: attribute %q: wanted a string: %w", name, err))
	}
	return s
}

// IntSlice returns the named attribute as a []int. Panics if the attribute
// is present but any element is not int-like.
func (am AttributeMap) IntSlice(name string) []int {
	v, ok := am[name]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		panic(fmt.Errorf("config: attribute %q: wanted a []int", name))
	}
	out := make([]int, len(raw))
	for i, el := range raw {
		n, err := cast.ToIntE(el)
		if err != nil {
			panic(fmt.Errorf("config: values in (%s) need to be ints: %w", name, err))
		}
		out[i] = n
	}
	return out
}

// StringSlice returns the named attribute as a []string.
func (am AttributeMap) StringSlice(name string) []string {
	v, ok := am[name]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		panic(fmt.Errorf("config: attribute %q: wanted a []string", name))
	}
	out := make([]string, len(raw))
	for i, el := range raw {
		s, err := cast.ToStringE(el)
		if err != nil {
			panic(fmt.Errorf("config: values in (%s) need to be strings: %w", name, err))
		}
		out[i] = s
	}
	return out
}
