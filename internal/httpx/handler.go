package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/grubdash/internal/dish"
	"github.com/jcmexdev/grubdash/internal/order"
	"github.com/jcmexdev/grubdash/internal/pipeline"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler adapts HTTP requests to the dish and order pipelines.
type Handler struct {
	dishes *dish.Pipelines
	orders *order.Pipelines
}

// NewHandler initializes the handler with the pipelines it serves.
func NewHandler(dishes *dish.Pipelines, orders *order.Pipelines) *Handler {
	return &Handler{dishes: dishes, orders: orders}
}

// serve runs p for every request, passing the named chi URL params along.
func (h *Handler) serve(p *pipeline.Pipeline, params ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeData(w, r)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Status:  http.StatusRequestEntityTooLarge,
				Message: "Request body too large",
			})
			return
		}
		if err != nil {
			slog.InfoContext(r.Context(), "invalid request body", "pipeline", p.Name(), "error", err)
			writeError(w, pipeline.MissingData("Request body must be valid JSON"))
			return
		}

		req := &pipeline.Request{
			Data:   data,
			Params: make(map[string]string, len(params)),
		}
		for _, name := range params {
			req.Params[name] = chi.URLParam(r, name)
		}

		res, err := p.Run(r.Context(), req)
		if err != nil {
			writeError(w, pipeline.AsError(err))
			return
		}
		if res.Data == nil {
			w.WriteHeader(res.Status)
			return
		}
		writeJSON(w, res.Status, DataResponse{Data: res.Data})
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers requests for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, pipeline.NotFound("Path not found: %s", r.URL.Path))
}

// MethodNotAllowed answers known paths requested with an unsupported method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Status:  http.StatusMethodNotAllowed,
		Message: r.Method + " not allowed for " + r.URL.Path,
	})
}

// decodeData returns the object under the body's "data" key. Only POST and
// PUT bodies sent as JSON are read; anything else, an empty body, a missing
// key, null or a non-object value all yield a nil map. Only malformed JSON
// is an error. Numbers are kept as json.Number so integer checks are exact.
func decodeData(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	if r.Body == nil || !carriesJSON(r) {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var envelope RequestEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Data))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	obj, _ := data.(map[string]any)
	return obj, nil
}

// carriesJSON reports whether r is a write whose body should be parsed. A
// missing Content-Type is read as JSON.
func carriesJSON(r *http.Request) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return false
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, perr *pipeline.Error) {
	writeJSON(w, perr.Status, ErrorResponse{
		Status:  perr.Status,
		Message: perr.Message,
	})
}
