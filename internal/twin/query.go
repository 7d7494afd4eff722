package twin

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/zeebo/xxh3"
)

// Query parsing errors, reported as INVALID_ARGUMENT.
var (
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidOrderBy   = errors.New("invalid order_by")
	ErrInvalidPageToken = errors.New("invalid page token")
	ErrTokenMismatch    = errors.New("page token does not match the request")
)

const filterSubject = "entry"

// ValueFilter bounds the values of listed entries. Nil bounds are open.
type ValueFilter struct {
	Min *int64
	Max *int64
}

// Match reports whether value lies within the filter.
func (f *ValueFilter) Match(value int64) bool {
	if f.Min != nil && value < *f.Min {
		return false
	}

	if f.Max != nil && value > *f.Max {
		return false
	}

	return true
}

// ParseFilter parses expressions such as "entry >= 10 && entry <= 50".
// Strict comparisons are folded into inclusive bounds.
func ParseFilter(expr string) (*ValueFilter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil //nolint:nilnil // empty filter selects everything
	}

	filter := &ValueFilter{}

	for _, clause := range strings.Split(expr, "&&") {
		fields := strings.Fields(clause)
		if len(fields) != 3 || fields[0] != filterSubject {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, strings.TrimSpace(clause))
		}

		bound, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFilter, fields[2], err)
		}

		switch fields[1] {
		case ">=":
			filter.Min = &bound
		case ">":
			bound++
			filter.Min = &bound
		case "<=":
			filter.Max = &bound
		case "<":
			bound--
			filter.Max = &bound
		default:
			return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, fields[1])
		}
	}

	return filter, nil
}

// ParseOrderBy reports whether orderBy asks for descending order.
func ParseOrderBy(orderBy string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(orderBy)) {
	case "", "asc", "value", "value asc":
		return false, nil
	case "desc", "value desc":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidOrderBy, orderBy)
	}
}

// cursor is the content of a page token. Tokens are bound to the scope and
// the ordering and filtering they were issued for.
type cursor struct {
	Offset      int    `json:"o"`
	Fingerprint string `json:"f"`
}

func listingFingerprint(key ScopeKey, orderBy, filter string) string {
	h := xxh3.HashString(strings.Join([]string{key.UniverseID, key.Datastore, key.Scope, orderBy, filter}, "\x00"))

	return fmt.Sprintf("%016x", h)
}

// EncodePageToken issues the token of the page starting at offset.
func EncodePageToken(key ScopeKey, orderBy, filter string, offset int) (string, error) {
	data, err := json.Marshal(cursor{Offset: offset, Fingerprint: listingFingerprint(key, orderBy, filter)})
	if err != nil {
		return "", fmt.Errorf("encoding page token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodePageToken returns the offset encoded in token. An empty token is the
// first page.
func DecodePageToken(key ScopeKey, orderBy, filter, token string) (int, error) {
	if token == "" {
		return 0, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPageToken, err)
	}

	var c cursor

	err = json.Unmarshal(data, &c)
	if err != nil || c.Offset < 0 {
		return 0, ErrInvalidPageToken
	}

	if c.Fingerprint != listingFingerprint(key, orderBy, filter) {
		return 0, ErrTokenMismatch
	}

	return c.Offset, nil
}
