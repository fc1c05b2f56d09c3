package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/go-chi/chi/v5"
)

// TermResponse is the body of GET /fib/{n}. Terms are decimal strings so
// values above 2^53 survive JSON clients that decode numbers as floats.
type TermResponse struct {
	Index int    `json:"index"`
	Term  string `json:"term"`
}

// SequenceResponse is the body of GET /fib?from=a&to=b.
type SequenceResponse struct {
	From  int      `json:"from"`
	To    int      `json:"to"`
	Terms []string `json:"terms"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (m *HTTPAPIModule) handleTerm(w http.ResponseWriter, r *http.Request) {
	n, err := parseIndex("n", chi.URLParam(r, "n"))
	if err != nil {
		m.writeError(w, r, err)
		return
	}

	if big, _ := strconv.ParseBool(r.URL.Query().Get("big")); big {
		if n > m.config.MaxBigIndex {
			m.writeError(w, r, fmt.Errorf("%w: %d exceeds %d", ErrIndexTooLarge, n, m.config.MaxBigIndex))
			return
		}
		term, err := fibonacci.ComputeBigContext(r.Context(), n)
		if err != nil {
			m.writeError(w, r, err)
			return
		}
		m.writeJSON(w, http.StatusOK, TermResponse{Index: n, Term: term.String()})
		return
	}

	term, err := m.computer.ComputeContext(r.Context(), n)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	m.writeJSON(w, http.StatusOK, TermResponse{Index: n, Term: strconv.FormatUint(term, 10)})
}

func (m *HTTPAPIModule) handleSequence(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, err := parseIndex("from", query.Get("from"))
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	to, err := parseIndex("to", query.Get("to"))
	if err != nil {
		m.writeError(w, r, err)
		return
	}

	terms, err := fibonacci.Sequence(r.Context(), m.computer, from, to)
	if err != nil {
		m.writeError(w, r, err)
		return
	}

	resp := SequenceResponse{From: from, To: to, Terms: make([]string, len(terms))}
	for i, term := range terms {
		resp.Terms[i] = strconv.FormatUint(term, 10)
	}
	m.writeJSON(w, http.StatusOK, resp)
}

func (m *HTTPAPIModule) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := m.app.Health(r.Context())
	status := http.StatusOK
	if health.Status == app.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	m.writeJSON(w, status, health)
}

func parseIndex(name, raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadInteger, name, raw)
	}
	return n, nil
}

// statusFor maps computation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fibonacci.ErrInvalidArgument),
		errors.Is(err, fibonacci.ErrInvalidRange),
		errors.Is(err, ErrBadInteger),
		errors.Is(err, ErrMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, fibonacci.ErrOverflow),
		errors.Is(err, ErrIndexTooLarge):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (m *HTTPAPIModule) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		m.logger.Error("Request failed", "path", r.URL.Path, "error", err)
	}
	m.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (m *HTTPAPIModule) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		m.logger.Debug("Failed to write response", "error", err)
	}
}
