package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dskow/echoer/internal/echo"
	"github.com/dskow/echoer/internal/jsonrpc"
	"github.com/dskow/echoer/internal/metrics"
	"github.com/dskow/echoer/internal/middleware"
)

// echoMethod is the only registered JSON-RPC method. Its result is the echo
// document with the decoded call as the operation result.
func echoMethod(in *echo.Request, call *jsonrpc.Request) (any, error) {
	return echo.Normalize(in, nil, call)
}

// RPC handles JSON-RPC calls. Application-level failures are HTTP 200 with an
// error object; only undecodable or schema-invalid requests are HTTP 400.
func (e *Echo) RPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() { metrics.Observe(metrics.ProtocolRPC, outcome, start) }()

	body, ok := e.readBody(w, r, metrics.ProtocolRPC)
	if !ok {
		outcome = metrics.OutcomeError
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	call, err := jsonrpc.Parse(body)
	if err != nil {
		outcome = metrics.OutcomeFault
		kind := "parse"
		if errors.Is(err, jsonrpc.ErrInvalidSchema) {
			kind = "schema"
		}
		metrics.Fault(metrics.ProtocolRPC, kind)
		e.logger.Debug("rpc request rejected", "error", err, "request_id", requestID)
		writeJSON(w, r, http.StatusBadRequest, jsonrpc.NewError(jsonrpc.CodeParseError, jsonrpc.MsgParseError, nil))
		return
	}

	method, found := e.methods.Lookup(call.Method)
	if !found {
		outcome = metrics.OutcomeFault
		metrics.Fault(metrics.ProtocolRPC, "method_not_found")
		e.logger.Debug("rpc method not found", "method", call.Method, "request_id", requestID)
		writeJSON(w, r, http.StatusOK, jsonrpc.NewError(jsonrpc.CodeMethodNotFound, jsonrpc.MsgMethodNotFound, call.ID))
		return
	}

	result, err := method(echo.FromHTTP(r, body), call)
	if err != nil {
		outcome = metrics.OutcomeFault
		metrics.Fault(metrics.ProtocolRPC, "invalid_request")
		e.logger.Debug("rpc method failed", "method", call.Method, "error", err, "request_id", requestID)
		writeJSON(w, r, http.StatusOK, jsonrpc.NewError(jsonrpc.CodeInvalidRequest, jsonrpc.MsgInvalidRequest, call.ID))
		return
	}

	writeJSON(w, r, http.StatusOK, jsonrpc.Result(call.ID, result))
}
