package soap

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func FuzzParseEchoRequest(f *testing.F) {
	f.Add(requestEnvelope("<EchoRequest>Hello</EchoRequest>"))
	f.Add(requestEnvelope("<tns:EchoRequest/>"))
	f.Add(requestEnvelope(""))
	f.Add([]byte("<not>valid</xml>"))
	f.Add([]byte(""))

	c := NewContract(testAddress)
	f.Fuzz(func(t *testing.T, data []byte) {
		text, err := ParseEchoRequest(data)
		if err != nil {
			if !errors.Is(err, ErrMalformedXML) && !errors.Is(err, ErrEmptyBody) && !errors.Is(err, ErrMissingRequestElement) {
				t.Fatalf("unclassified error: %v", err)
			}
			return
		}
		if !utf8.ValidString(text) {
			t.Fatalf("extracted text is not UTF-8: %q", text)
		}
		if _, err := c.SuccessEnvelope(&text); err != nil {
			t.Fatalf("SuccessEnvelope: %v", err)
		}
	})
}
