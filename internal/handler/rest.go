package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dskow/echoer/internal/apierror"
	"github.com/dskow/echoer/internal/echo"
	"github.com/dskow/echoer/internal/metrics"
	"github.com/dskow/echoer/internal/middleware"
)

type restError struct {
	Error string `json:"error"`
}

// REST echoes any request as the JSON document, with the raw body as the
// operation result.
func (e *Echo) REST(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() { metrics.Observe(metrics.ProtocolREST, outcome, start) }()

	body, ok := e.readBody(w, r, metrics.ProtocolREST)
	if !ok {
		outcome = metrics.OutcomeError
		return
	}

	var param *string
	if p, found := mux.Vars(r)["param"]; found {
		param = &p
	}

	doc, err := echo.Normalize(echo.FromHTTP(r, body), param, string(body))
	switch {
	case errors.Is(err, echo.ErrDecode):
		outcome = metrics.OutcomeError
		metrics.Fault(metrics.ProtocolREST, "decode")
		e.logger.Debug("rest body is not UTF-8", "request_id", middleware.GetRequestID(r.Context()))
		writeJSON(w, r, http.StatusInternalServerError, restError{Error: msgInvalidUnicode})
		return
	case err != nil:
		outcome = metrics.OutcomeError
		apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "an unexpected error occurred")
		return
	}

	writeJSON(w, r, http.StatusOK, doc)
}
