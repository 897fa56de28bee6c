package soap

import (
	"encoding/xml"
	"fmt"
)

type responseEnvelope struct {
	XMLName xml.Name     `xml:"soap:Envelope"`
	SOAP    string       `xml:"xmlns:soap,attr"`
	TNS     string       `xml:"xmlns:tns,attr,omitempty"`
	Body    responseBody `xml:"soap:Body"`
}

type responseBody struct {
	Response *echoResponse `xml:"EchoResponse"`
	Fault    *fault        `xml:"soap:Fault"`
}

type echoResponse struct {
	Text string `xml:",chardata"`
}

type fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// SuccessEnvelope wraps text in Envelope > Body > EchoResponse. A nil text
// renders an empty EchoResponse element.
func (c *Contract) SuccessEnvelope(text *string) ([]byte, error) {
	resp := &echoResponse{}
	if text != nil {
		resp.Text = *text
	}
	env := responseEnvelope{
		SOAP: c.NS.Envelope,
		TNS:  c.TargetNamespace(),
		Body: responseBody{Response: resp},
	}
	b, err := marshalDocument(env, false)
	if err != nil {
		return nil, fmt.Errorf("marshalling SOAP response: %w", err)
	}
	return b, nil
}

// FaultEnvelope builds Envelope > Body > Fault carrying code and message.
func (c *Contract) FaultEnvelope(code, message string) ([]byte, error) {
	env := responseEnvelope{
		SOAP: c.NS.Envelope,
		Body: responseBody{Fault: &fault{Code: code, String: message}},
	}
	b, err := marshalDocument(env, false)
	if err != nil {
		return nil, fmt.Errorf("marshalling SOAP fault: %w", err)
	}
	return b, nil
}
