package echo

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
)

// parseQuery decodes a raw query string into an ordered mapping. Keys keep
// the order of their first appearance; a repeated key keeps its first value,
// which is what url.Values.Get would report.
func parseQuery(raw string) Query {
	q := Query{}
	seen := make(map[string]bool)
	for _, f := range parsePairs(raw) {
		if seen[f.Key] {
			continue
		}
		seen[f.Key] = true
		q = append(q, f)
	}
	return q
}

// parsePairs decodes application/x-www-form-urlencoded text, keeping every
// pair in order. Pairs that fail to unescape are dropped, as url.ParseQuery
// does.
func parsePairs(raw string) []Field {
	var fields []Field
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" || strings.Contains(pair, ";") {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return fields
}

// parseForm returns the form fields carried by body, or nil when the content
// type is not a form encoding or no field could be read.
func parseForm(contentType string, body []byte) []Field {
	if contentType == "" || len(body) == 0 {
		return nil
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	switch mediaType {
	case "application/x-www-form-urlencoded":
		return parsePairs(string(body))
	case "multipart/form-data":
		return parseMultipart(body, params["boundary"])
	}
	return nil
}

// parseMultipart collects the non-file parts of a multipart body in order.
// File uploads are not form fields and are skipped.
func parseMultipart(body []byte, boundary string) []Field {
	if boundary == "" {
		return nil
	}
	var fields []Field
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			// io.EOF ends a well-formed body; anything else keeps what was read.
			return fields
		}
		if part.FormName() == "" || part.FileName() != "" {
			part.Close()
			continue
		}
		value, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return fields
		}
		fields = append(fields, Field{Key: part.FormName(), Value: string(value)})
	}
}
