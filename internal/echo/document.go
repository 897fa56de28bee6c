// Package echo builds the protocol-neutral description of an inbound request
// that every echo surface (REST, SOAP, JSON-RPC) reflects back to the caller.
package echo

import (
	"bytes"
	"encoding/json"
)

// Document is the uniform echo result. Its key set is identical for every
// protocol: client, request and op_result.
type Document struct {
	Client   Client      `json:"client"`
	Request  RequestInfo `json:"request"`
	OpResult any         `json:"op_result"`
}

// Client is the peer address as reported by the transport. Unknown values
// are null, never empty strings.
type Client struct {
	Host *string `json:"host"`
	Port *string `json:"port"`
}

// RequestInfo describes the HTTP request itself.
type RequestInfo struct {
	HTTP       HTTPInfo `json:"http"`
	Params     string   `json:"params"`
	QueryParam Query    `json:"query_param"`
	Headers    []Header `json:"headers"`
	Body       Body     `json:"body"`
}

// HTTPInfo holds the request line.
type HTTPInfo struct {
	Method   string  `json:"method"`
	Path     string  `json:"path"`
	Protocol *string `json:"protocol"`
}

// Field is a single key/value pair from a query string or form body.
type Field struct {
	Key   string
	Value string
}

// MarshalJSON encodes the pair as a two element array.
func (f Field) MarshalJSON() ([]byte, error) {
	return Marshal([2]string{f.Key, f.Value})
}

// Header is one header instance. It encodes as a single-key object so that
// repeated header names survive serialization.
type Header struct {
	Name  string
	Value string
}

// MarshalJSON encodes the header as {"Name":"Value"}.
func (h Header) MarshalJSON() ([]byte, error) {
	return marshalObject([]Field{{Key: h.Name, Value: h.Value}})
}

// Query is an ordered key to value mapping.
type Query []Field

// Get returns the value stored for key.
func (q Query) Get(key string) (string, bool) {
	for _, f := range q {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes the query as a JSON object, keeping key order.
func (q Query) MarshalJSON() ([]byte, error) {
	return marshalObject(q)
}

// Body is either the decoded request body text or, for form submissions,
// the ordered list of form fields.
type Body struct {
	Text string
	Form []Field
}

// IsForm reports whether the body holds parsed form fields.
func (b Body) IsForm() bool {
	return len(b.Form) > 0
}

// MarshalJSON encodes the form fields as [[key, value], ...] when present and
// the raw text otherwise.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.IsForm() {
		return Marshal(b.Form)
	}
	return Marshal(b.Text)
}

func marshalObject(fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal encodes v as compact JSON without escaping &, < and >. Echoed
// values come back byte for byte as the client sent them.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
