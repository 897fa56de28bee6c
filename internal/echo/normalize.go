package echo

import (
	"errors"
	"html"
	"net"
	"net/http"
	"sort"
	"unicode/utf8"
)

// NullParam is what a missing path parameter is echoed as. Existing clients
// compare against this literal.
const NullParam = "None"

// ErrDecode is returned by Normalize when the request body is not valid UTF-8.
var ErrDecode = errors.New("request body is not valid UTF-8")

// Request is the transport-neutral view of an inbound HTTP request.
type Request struct {
	Method     string
	Path       string
	Protocol   string
	RemoteAddr string
	Host       string
	Header     http.Header
	RawQuery   string
	Body       []byte
}

// FromHTTP captures r together with its already-read body.
func FromHTTP(r *http.Request, body []byte) *Request {
	return &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		Protocol:   r.Proto,
		RemoteAddr: r.RemoteAddr,
		Host:       r.Host,
		Header:     r.Header.Clone(),
		RawQuery:   r.URL.RawQuery,
		Body:       body,
	}
}

// Normalize builds the echo Document for req. param is the route's path
// parameter (nil when the route has none) and opResult is whatever the
// wrapping protocol wants reported as the operation result.
func Normalize(req *Request, param *string, opResult any) (*Document, error) {
	if !utf8.Valid(req.Body) {
		return nil, ErrDecode
	}

	body := Body{Text: string(req.Body)}
	if fields := parseForm(req.Header.Get("Content-Type"), req.Body); len(fields) > 0 {
		body.Form = fields
	}

	return &Document{
		Client: clientInfo(req.RemoteAddr),
		Request: RequestInfo{
			HTTP: HTTPInfo{
				Method:   req.Method,
				Path:     req.Path,
				Protocol: nullable(req.Protocol),
			},
			Params:     escapeParam(param),
			QueryParam: parseQuery(req.RawQuery),
			Headers:    headerList(req.Host, req.Header),
			Body:       body,
		},
		OpResult: opResult,
	}, nil
}

func escapeParam(param *string) string {
	if param == nil {
		return NullParam
	}
	return html.EscapeString(*param)
}

func clientInfo(remoteAddr string) Client {
	if remoteAddr == "" {
		return Client{}
	}
	host, port, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return Client{Host: &remoteAddr}
	}
	return Client{Host: nullable(host), Port: nullable(port)}
}

// headerList flattens h into one entry per value. net/http does not keep
// arrival order, so Host comes first and the rest follow in sorted name
// order; values of a repeated header keep their relative order.
func headerList(host string, h http.Header) []Header {
	names := make([]string, 0, len(h))
	n := 0
	for name, values := range h {
		names = append(names, name)
		n += len(values)
	}
	sort.Strings(names)

	out := make([]Header, 0, n+1)
	if host != "" {
		out = append(out, Header{Name: "Host", Value: host})
	}
	for _, name := range names {
		if name == "Host" && host != "" {
			continue
		}
		for _, v := range h[name] {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
