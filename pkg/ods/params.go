package ods

// Query parameter names understood by the service.
const (
	QueryMaxPageSize  = "max_page_size"
	QueryPageToken    = "page_token"
	QueryOrderBy      = "order_by"
	QueryFilter       = "filter"
	QueryID           = "id"
	QueryAllowMissing = "allow_missing"
)

// Ptr returns a pointer to v. Handy for filling optional parameters.
func Ptr[T any](v T) *T {
	return &v
}

// DatastoreRef identifies the scoped ordered data store an operation targets,
// together with the credential used to reach it.
type DatastoreRef struct {
	APIKey        string
	UniverseID    UniverseID
	DatastoreName string
	// Scope defaults to "global" when nil.
	Scope *string
}

// Path returns the resource path of the referenced scope followed by suffix.
func (r DatastoreRef) Path(suffix string) string {
	return ResourcePath(r.UniverseID, r.DatastoreName, r.Scope, suffix)
}

// Segments returns the unescaped path segments of the referenced scope
// followed by extra.
func (r DatastoreRef) Segments(extra ...string) []string {
	return ResourceSegments(r.UniverseID, r.DatastoreName, r.Scope, extra...)
}

// ListEntriesParams are the parameters of a list operation.
type ListEntriesParams struct {
	DatastoreRef

	MaxPageSize *int
	PageToken   *PageToken
	OrderBy     *string
	Filter      *string
}

// Query encodes the optional list parameters that are present.
func (p *ListEntriesParams) Query() Query {
	var pageToken *string
	if p.PageToken != nil {
		token := p.PageToken.String()
		pageToken = &token
	}

	return Query{}.
		AddInt(QueryMaxPageSize, p.MaxPageSize).
		AddString(QueryPageToken, pageToken).
		AddString(QueryOrderBy, p.OrderBy).
		AddString(QueryFilter, p.Filter)
}

// CreateEntryParams are the parameters of a create operation.
type CreateEntryParams struct {
	DatastoreRef

	ID    string
	Value int64
}

// Query encodes the entry id.
func (p *CreateEntryParams) Query() Query {
	return Query{}.AddString(QueryID, &p.ID)
}

// EntryParams address a single entry for get and delete.
type EntryParams struct {
	DatastoreRef

	ID string
}

// UpdateEntryParams are the parameters of an update operation.
type UpdateEntryParams struct {
	DatastoreRef

	ID    string
	Value int64
	// AllowMissing asks the service to create the entry when it does not exist.
	AllowMissing *bool
}

// Query encodes allow_missing when present.
func (p *UpdateEntryParams) Query() Query {
	return Query{}.AddBool(QueryAllowMissing, p.AllowMissing)
}

// IncrementEntryParams are the parameters of an increment operation.
type IncrementEntryParams struct {
	DatastoreRef

	ID        string
	Increment int64
}
