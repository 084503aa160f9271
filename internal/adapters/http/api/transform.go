package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/fraudstream/internal/adapters/firehose"
)

// maxBatchBytes matches the delivery stream's transform invocation limit.
const maxBatchBytes = 6 << 20

// TransformHandler serves delivery-stream transform batches over HTTP.
type TransformHandler struct {
	deps Dependencies
}

// NewTransformHandler creates a new transform handler.
func NewTransformHandler(deps Dependencies) *TransformHandler {
	return &TransformHandler{deps: deps}
}

// HandleTransform handles POST /transform requests. The body is a transform
// event; the response is the transform response, always 200 once the body
// decodes. Record data that is not base64 fails that record only.
func (h *TransformHandler) HandleTransform(w http.ResponseWriter, r *http.Request) {
	const op = "api.transform"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	var ev firehose.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err := dec.Decode(&ev); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	out, err := h.deps.Transform(ctx, h.deps.Invocation(ctx, ev), firehose.Records(ev))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, firehose.Response(out))
}
