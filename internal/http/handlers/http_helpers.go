package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/movement-management/internal/models"
	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/rs/zerolog"
)

const (
	jsonContentType   = "application/json"
	ndjsonContentType = "application/x-ndjson"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

// writeError maps a service error onto an HTTP status. Errors the client cannot act
// on are logged and hidden behind fallback.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, repo.ErrMovementNotFound):
		http.Error(w, "movement not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrDuplicatedMovementID):
		http.Error(w, "movement already exists", http.StatusConflict)
	case errors.Is(err, context.Canceled):
		logger.Debug().Err(err).Msg("request cancelled by client")
	default:
		logger.Error().Err(err).Msg(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// wantsNDJSON reports whether the Accept header lists application/x-ndjson with a
// non-zero quality.
func wantsNDJSON(r *http.Request) bool {
	for _, accepted := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(accepted))
		if err != nil || mediaType != ndjsonContentType {
			continue
		}
		if q, ok := params["q"]; ok {
			if weight, err := strconv.ParseFloat(q, 64); err != nil || weight <= 0 {
				continue
			}
		}
		return true
	}
	return false
}

// streamMovements writes seq to the client as it is produced: a JSON array by
// default, newline-delimited JSON when the client accepts application/x-ndjson.
// The status is committed with the first movement, so a failure after that point
// can only abort the connection.
func streamMovements(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, seq iter.Seq2[models.Movement, error], fallback string, headers ...http.Header) {
	ndjson := wantsNDJSON(r)
	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	started := false
	written := 0

	begin := func() {
		if len(headers) > 0 {
			for key, value := range headers[0] {
				w.Header()[key] = value
			}
		}
		if ndjson {
			w.Header().Set("Content-Type", ndjsonContentType)
		} else {
			w.Header().Set("Content-Type", jsonContentType)
		}
		w.WriteHeader(http.StatusOK)
		if !ndjson {
			_, _ = io.WriteString(w, "[")
		}
		started = true
	}

	for m, err := range seq {
		if err != nil {
			if !started {
				writeError(w, logger, err, fallback)
				return
			}
			logger.Error().Err(err).Int("written", written).Msg("movement stream aborted")
			panic(http.ErrAbortHandler)
		}

		if !started {
			begin()
		}
		if !ndjson && written > 0 {
			_, _ = io.WriteString(w, ",")
		}
		if err := enc.Encode(m); err != nil {
			logger.Debug().Err(err).Msg("client stopped reading movement stream")
			return
		}
		written++
		_ = rc.Flush()
	}

	if !started {
		begin()
	}
	if !ndjson {
		_, _ = io.WriteString(w, "]\n")
	}
}
