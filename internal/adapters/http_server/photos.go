package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/providers"
)

// Photos fetches place images by reference.
type Photos interface {
	Photo(ctx context.Context, ref string) (io.ReadCloser, string, error)
}

func (h *Handlers) photo(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "Missing required parameter: ref")
		return
	}
	if h.Photos == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "photos unavailable")
		return
	}

	body, ct, err := h.Photos.Photo(r.Context(), ref)
	switch {
	case errors.Is(err, providers.ErrNotFound), errors.Is(err, providers.ErrNoCredentials):
		writeProblem(w, http.StatusNotFound, "Not Found", "photo not found")
		return
	case err != nil:
		log.Warn().Err(err).Str("ref", ref).Msg("photo fetch failed")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "photo fetch failed")
		return
	}
	defer body.Close()

	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		log.Debug().Err(err).Str("ref", ref).Msg("photo copy aborted")
	}
}
