package ods

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryPair is a single name/value query parameter.
type QueryPair struct {
	Name  string
	Value string
}

// Query is an ordered list of query parameters. Only parameters that are
// present are ever added, so it never carries empty placeholders.
type Query []QueryPair

// AddString appends name when value is non-nil.
func (q Query) AddString(name string, value *string) Query {
	if value == nil {
		return q
	}

	return append(q, QueryPair{Name: name, Value: *value})
}

// AddInt appends name in decimal when value is non-nil.
func (q Query) AddInt(name string, value *int) Query {
	if value == nil {
		return q
	}

	return append(q, QueryPair{Name: name, Value: strconv.Itoa(*value)})
}

// AddBool appends name as "true" or "false" when value is non-nil.
func (q Query) AddBool(name string, value *bool) Query {
	if value == nil {
		return q
	}

	return append(q, QueryPair{Name: name, Value: strconv.FormatBool(*value)})
}

// Get returns the value of the first pair called name.
func (q Query) Get(name string) (string, bool) {
	for _, pair := range q {
		if pair.Name == name {
			return pair.Value, true
		}
	}

	return "", false
}

// Encode renders the pairs as a URL query string, preserving their order.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, pair := range q {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(pair.Name))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(pair.Value))
	}

	return builder.String()
}

// ToValues converts the pairs to url.Values.
func (q Query) ToValues() url.Values {
	values := url.Values{}

	for _, pair := range q {
		values.Add(pair.Name, pair.Value)
	}

	return values
}
