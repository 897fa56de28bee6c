// Package jsonrpc decodes and validates JSON-RPC 2.0 request envelopes and
// encodes result and error responses.
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Version is the only protocol version accepted and emitted.
const Version = "2.0"

// Standard JSON-RPC error codes used by the echo endpoint.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
)

// Messages paired with the codes above.
const (
	MsgParseError     = "Parse error"
	MsgInvalidRequest = "Invalid request"
	MsgMethodNotFound = "Method not found"
)

var (
	// ErrParse reports a body that is not UTF-8 encoded JSON.
	ErrParse = errors.New("invalid JSON")
	// ErrInvalidSchema reports well-formed JSON that is not a valid request.
	ErrInvalidSchema = errors.New("invalid JSON-RPC request")
)

// Request is a validated JSON-RPC request. Numbers inside Params and ID are
// json.Number so they re-encode exactly as received.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      any    `json:"id"`
}

// Parse decodes body and validates it against the request schema.
func Parse(body []byte) (*Request, error) {
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid UTF-8", ErrParse)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: syntax error", ErrParse)
	}

	violations, err := validate(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(violations, "; "))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &req, nil
}

// Error is the error member of a response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is either a result or an error response; exactly one of Result
// and Error is encoded. ID is encoded even when nil.
type Response struct {
	Result any
	Error  *Error
	ID     any
}

// Result builds a successful response.
func Result(id, result any) *Response {
	return &Response{Result: result, ID: id}
}

// NewError builds an error response.
func NewError(code int, message string, id any) *Response {
	return &Response{Error: &Error{Code: code, Message: message}, ID: id}
}

// MarshalJSON encodes {"jsonrpc","result"|"error","id"} in that order.
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return marshal(struct {
			JSONRPC string `json:"jsonrpc"`
			Error   *Error `json:"error"`
			ID      any    `json:"id"`
		}{Version, r.Error, r.ID})
	}
	return marshal(struct {
		JSONRPC string `json:"jsonrpc"`
		Result  any    `json:"result"`
		ID      any    `json:"id"`
	}{Version, r.Result, r.ID})
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
