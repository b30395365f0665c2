package records

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type fieldError struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

type errorResponse struct {
	Error any `json:"error"`
}

type listResponse struct {
	Items []Record `json:"items"`
}

// Handler builds the collection handler with a fresh store.
func Handler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithStore(NewStore(opts.IDField, opts.Records...), opts)
}

// HandlerWithStore serves store.
func HandlerWithStore(store *Store, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })

	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, listResponse{Items: store.List()})
	})

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		payload, ok := decodeBody(w, req)
		if !ok {
			return
		}
		delete(payload, opts.IDField)
		if missing := missingFields(payload, opts.Required); len(missing) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: missing})
			return
		}
		id := opts.NewID()
		store.Put(id, payload)
		created, _ := store.Get(id)
		writeJSON(w, http.StatusCreated, created)
	})

	r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec, ok := store.Get(chi.URLParam(req, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		current, ok := store.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		payload, ok := decodeBody(w, req)
		if !ok {
			return
		}
		for key, value := range payload {
			if key == opts.IDField {
				continue
			}
			current[key] = value
		}
		if missing := missingFields(current, opts.Required); len(missing) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: missing})
			return
		}
		store.Put(id, current)
		updated, _ := store.Get(id)
		writeJSON(w, http.StatusOK, updated)
	})
	return r
}

func decodeBody(w http.ResponseWriter, req *http.Request) (Record, bool) {
	var payload Record
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil || payload == nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return payload, true
}

func missingFields(rec Record, required []string) []fieldError {
	var out []fieldError
	for _, name := range required {
		value, ok := rec[name]
		if s, isString := value.(string); !ok || value == nil || (isString && s == "") {
			out = append(out, fieldError{Path: []string{name}, Message: "required"})
		}
	}
	return out
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}
