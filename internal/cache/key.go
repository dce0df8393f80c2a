package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Key identifies one normalized query. Two queries with the same type and the
// same parameter set always produce the same Key.
type Key string

func (k Key) String() string { return string(k) }

// Params is the parameter set of a query. Map iteration order is irrelevant:
// NewKey sorts names before hashing.
type Params map[string]string

// Set stores a trimmed string parameter and returns p for chaining.
func (p Params) Set(name, value string) Params {
	p[name] = strings.TrimSpace(value)
	return p
}

// SetInt stores a number in base 10, so 1 and "1" normalize identically.
func (p Params) SetInt(name string, value int) Params {
	p[name] = strconv.Itoa(value)
	return p
}

// Get returns the trimmed value of name, or "".
func (p Params) Get(name string) string {
	return strings.TrimSpace(p[name])
}

// Int parses name as an integer, returning def when absent or malformed.
func (p Params) Int(name string, def int) int {
	v := p.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	return maps.Clone(p)
}

// NewKey derives the cache key for a query. Values are trimmed and empty
// values dropped, so an absent filter and an empty filter share a key. Name
// and value are length-prefixed before hashing so no two distinct parameter
// sets can concatenate to the same input.
func NewKey(queryType string, params Params) Key {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s|", len(queryType), queryType)
	for _, name := range slices.Sorted(maps.Keys(params)) {
		value := strings.TrimSpace(params[name])
		if value == "" {
			continue
		}
		fmt.Fprintf(h, "%d:%s=%d:%s|", len(name), name, len(value), value)
	}
	return Key(queryType + ":" + hex.EncodeToString(h.Sum(nil)))
}
