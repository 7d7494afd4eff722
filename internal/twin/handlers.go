package twin

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/fivetwenty-io/ods-client/internal/constants"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

const incrementAction = ":increment"

// Handler serves the ordered data stores API from a MemoryStore.
type Handler struct {
	store  *MemoryStore
	apiKey string
}

// NewHandler creates a handler. A non-empty apiKey is the only key accepted;
// otherwise any non-empty key is.
func NewHandler(store *MemoryStore, apiKey string) *Handler {
	return &Handler{store: store, apiKey: apiKey}
}

// Routes mounts the entry routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/universes/{universeID}/orderedDataStores/{datastore}/scopes/{scope}/entries", func(r chi.Router) {
		r.Use(h.apiKeyMiddleware)

		r.Get("/", h.ListEntries)
		r.Post("/", h.CreateEntry)
		r.Get("/{id}", h.GetEntry)
		r.Patch("/{id}", h.PatchEntry)
		r.Delete("/{id}", h.DeleteEntry)
	})
}

func (h *Handler) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(constants.HeaderAPIKey)
		if key == "" {
			writeError(w, http.StatusUnauthorized, ods.ErrorCodeUnauthenticated, "Missing API key.")

			return
		}

		if h.apiKey != "" && key != h.apiKey {
			writeError(w, http.StatusForbidden, ods.ErrorCodePermissionDenied, "The API key does not grant access to this resource.")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// wireEntry is the response form of an entry.
type wireEntry struct {
	Path  string `json:"path"`
	ID    string `json:"id"`
	Value int64  `json:"value"`
}

type wireListing struct {
	Entries       []wireEntry `json:"entries"`
	NextPageToken string      `json:"nextPageToken"`
}

// ListEntries handles GET .../entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	key, ok := scopeKey(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	orderBy := query.Get(ods.QueryOrderBy)
	filterExpr := query.Get(ods.QueryFilter)

	descending, err := ParseOrderBy(orderBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, err.Error())

		return
	}

	filter, err := ParseFilter(filterExpr)
	if err != nil {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, err.Error())

		return
	}

	pageSize, err := parsePageSize(query.Get(ods.QueryMaxPageSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, err.Error())

		return
	}

	offset, err := DecodePageToken(key, orderBy, filterExpr, query.Get(ods.QueryPageToken))
	if err != nil {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, err.Error())

		return
	}

	records, more := h.store.List(key, ListOptions{
		Descending: descending,
		Filter:     filter,
		Offset:     offset,
		Limit:      pageSize,
	})

	listing := wireListing{Entries: make([]wireEntry, 0, len(records))}
	for _, record := range records {
		listing.Entries = append(listing.Entries, toWire(key, record))
	}

	if more {
		listing.NextPageToken, err = EncodePageToken(key, orderBy, filterExpr, offset+len(records))
		if err != nil {
			writeError(w, http.StatusInternalServerError, ods.ErrorCodeInternal, err.Error())

			return
		}
	}

	writeJSON(w, http.StatusOK, listing)
}

// CreateEntry handles POST .../entries?id=.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	key, ok := scopeKey(w, r)
	if !ok {
		return
	}

	id := r.URL.Query().Get(ods.QueryID)
	if id == "" {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, "The id query parameter is required.")

		return
	}

	value, ok := decodeAmount(w, r, "value")
	if !ok {
		return
	}

	record, err := h.store.Create(key, id, value)
	if err != nil {
		writeStoreError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toWire(key, record))
}

// GetEntry handles GET .../entries/{id}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	key, ok := scopeKey(w, r)
	if !ok {
		return
	}

	id, ok := urlParam(w, r, "id")
	if !ok {
		return
	}

	record, err := h.store.Get(key, id)
	if err != nil {
		writeStoreError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toWire(key, record))
}

// PatchEntry handles PATCH .../entries/{id} and .../entries/{id}:increment.
func (h *Handler) PatchEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParam(w, r, "id")
	if !ok {
		return
	}

	if trimmed, found := strings.CutSuffix(id, incrementAction); found {
		h.incrementEntry(w, r, trimmed)

		return
	}

	h.updateEntry(w, r, id)
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request, id string) {
	key, ok := scopeKey(w, r)
	if !ok {
		return
	}

	allowMissing := false

	if raw := r.URL.Query().Get(ods.QueryAllowMissing); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, "allow_missing must be true or false.")

			return
		}

		allowMissing = parsed
	}

	value, ok := decodeAmount(w, r, "value")
	if !ok {
		return
	}

	record, err := h.store.Update(key, id, value, allowMissing)
	if err != nil {
		writeStoreError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toWire(key, record))
}

func (h *Handler) incrementEntry(w http.ResponseWriter, r *http.Request, id string) {
	key, ok := scopeKey(w, r)
	if !ok {
		return
	}

	amount, ok := decodeAmount(w, r, "amount")
	if !ok {
		return
	}

	record, err := h.store.Increment(key, id, amount)
	if err != nil {
		writeStoreError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toWire(key, record))
}

// DeleteEntry handles DELETE .../entries/{id}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	key, ok := scopeKey(w, r)
	if !ok {
		return
	}

	id, ok := urlParam(w, r, "id")
	if !ok {
		return
	}

	err := h.store.Delete(key, id)
	if err != nil {
		writeStoreError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// urlParam returns the unescaped route parameter name. chi matches on the
// raw path when one is present, so parameters may still be escaped.
func urlParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := chi.URLParam(r, name)

	var err error
	if r.URL.RawPath != "" {
		value, err = url.PathUnescape(value)
	}

	if err != nil || value == "" {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, fmt.Sprintf("Invalid %s.", name))

		return "", false
	}

	return value, true
}

func scopeKey(w http.ResponseWriter, r *http.Request) (ScopeKey, bool) {
	universeID, ok := urlParam(w, r, "universeID")
	if !ok {
		return ScopeKey{}, false
	}

	if _, err := strconv.ParseUint(universeID, 10, 64); err != nil {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, "Invalid universe id.")

		return ScopeKey{}, false
	}

	datastore, ok := urlParam(w, r, "datastore")
	if !ok {
		return ScopeKey{}, false
	}

	scope, ok := urlParam(w, r, "scope")
	if !ok {
		return ScopeKey{}, false
	}

	return ScopeKey{UniverseID: universeID, Datastore: datastore, Scope: scope}, true
}

func parsePageSize(raw string) (int, error) {
	if raw == "" {
		return constants.DefaultTwinPageSize, nil
	}

	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid max_page_size %q", raw)
	}

	if size == 0 {
		return constants.DefaultTwinPageSize, nil
	}

	return min(size, constants.MaxTwinPageSize), nil
}

// decodeAmount reads the integer field name from a JSON request body.
func decodeAmount(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	var body map[string]*int64

	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, "Request body must be a JSON object with an integer "+name+".")

		return 0, false
	}

	value, ok := body[name]
	if !ok || value == nil {
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, "Missing "+name+" in request body.")

		return 0, false
	}

	return *value, true
}

func toWire(key ScopeKey, record Record) wireEntry {
	return wireEntry{
		Path: "universes/" + key.UniverseID +
			"/orderedDataStores/" + key.Datastore +
			"/scopes/" + key.Scope +
			"/entries/" + record.ID,
		ID:    record.ID,
		Value: record.Value,
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		writeError(w, http.StatusNotFound, ods.ErrorCodeNotFound, "Entry not found.")
	case errors.Is(err, ErrEntryExists):
		writeError(w, http.StatusConflict, ods.ErrorCodeAlreadyExists, "Entry already exists.")
	case errors.Is(err, ErrValueOverflow):
		writeError(w, http.StatusBadRequest, ods.ErrorCodeInvalidArgument, "Resulting value is out of range.")
	default:
		writeError(w, http.StatusInternalServerError, ods.ErrorCodeInternal, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)

	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ods.ErrorEnvelope{Code: code, Message: message})
}
