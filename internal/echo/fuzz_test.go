package echo

import (
	"encoding/json"
	"errors"
	"testing"
)

func FuzzNormalize(f *testing.F) {
	f.Add("a=1&b=2", "application/x-www-form-urlencoded", []byte("key1=value1&key2=value+2"), "<p>")
	f.Add("", "text/plain", []byte("hello"), "")
	f.Add("x=%zz;y", "multipart/form-data; boundary=b", []byte("--b\r\n"), "None")
	f.Add("", "", []byte{0xff}, "x")

	f.Fuzz(func(t *testing.T, rawQuery, contentType string, body []byte, param string) {
		req := &Request{
			Method:     "POST",
			Path:       "/echo/rest",
			Protocol:   "HTTP/1.1",
			RemoteAddr: "127.0.0.1:1234",
			Host:       "localhost",
			Header:     map[string][]string{"Content-Type": {contentType}},
			RawQuery:   rawQuery,
			Body:       body,
		}
		doc, err := Normalize(req, &param, nil)
		if err != nil {
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}
		if _, err := json.Marshal(doc); err != nil {
			t.Fatalf("marshal: %v", err)
		}
	})
}
