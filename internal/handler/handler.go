// Package handler adapts the echo, SOAP and JSON-RPC codecs to HTTP. Each
// surface reads the body, unwraps its envelope, builds the echo document and
// answers in its own wire format.
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/dskow/echoer/internal/apierror"
	"github.com/dskow/echoer/internal/echo"
	"github.com/dskow/echoer/internal/jsonrpc"
	"github.com/dskow/echoer/internal/metrics"
	"github.com/dskow/echoer/internal/middleware"
	"github.com/dskow/echoer/internal/soap"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeXML     = "application/xml"
	contentTypeXMLUTF8 = "application/xml; charset=utf-8"
	contentTypeHTML    = "text/html; charset=utf-8"
)

// msgInvalidUnicode is returned when a body cannot be decoded as UTF-8.
const msgInvalidUnicode = "Request must be valid Unicode"

// Echo serves the three echo surfaces. The SOAP contract can be replaced at
// runtime; everything else is fixed at construction.
type Echo struct {
	contract atomic.Pointer[soap.Contract]
	methods  *jsonrpc.Registry[*echo.Request]
	logger   *slog.Logger
}

// New returns an Echo serving contract.
func New(contract *soap.Contract, logger *slog.Logger) *Echo {
	e := &Echo{logger: logger}
	e.contract.Store(contract)
	e.methods = jsonrpc.NewRegistry(map[string]jsonrpc.Method[*echo.Request]{
		"echo": echoMethod,
	})
	return e
}

// Contract returns the SOAP contract currently in effect.
func (e *Echo) Contract() *soap.Contract {
	return e.contract.Load()
}

// SetContract swaps the SOAP contract. Requests already in flight keep the
// contract they started with.
func (e *Echo) SetContract(c *soap.Contract) {
	e.contract.Store(c)
}

// readBody drains the request body. On failure the error response has
// already been written and ok is false.
func (e *Echo) readBody(w http.ResponseWriter, r *http.Request, protocol string) (body []byte, ok bool) {
	if r.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if limit, isLimit := middleware.IsBodyLimitError(err); isLimit {
			metrics.Fault(protocol, "body_too_large")
			middleware.WriteBodyLimitError(w, r, limit)
			return nil, false
		}
		e.logger.Warn("reading request body failed",
			"protocol", protocol,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		apierror.WriteJSON(w, r, http.StatusBadRequest, apierror.BodyUnreadable, "request body could not be read")
		return nil, false
	}
	return body, true
}

// writeJSON encodes v before touching the response so an encoding failure can
// still become a clean 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := echo.Marshal(v)
	if err != nil {
		apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "response could not be encoded")
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	w.Write(b) //nolint:errcheck
}

func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck
}
