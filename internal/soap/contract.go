// Package soap implements the SOAP 1.1 side of the echo service: the WSDL
// contract for its single Echo operation, parsing of EchoRequest envelopes,
// and the success and fault response envelopes.
package soap

import (
	"encoding/xml"
	"strings"
)

// Standard namespace URIs used by the contract and envelopes.
const (
	WSDLNamespace     = "http://schemas.xmlsoap.org/wsdl/"
	BindingNamespace  = "http://schemas.xmlsoap.org/wsdl/soap/"
	XSDNamespace      = "http://www.w3.org/2001/XMLSchema"
	EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	HTTPTransport     = "http://schemas.xmlsoap.org/soap/http"
)

// servicePath is appended to the service address to form the target namespace.
const servicePath = "/echo/soap"

// FaultClient is the fault code for errors caused by the request.
const FaultClient = "Client"

// Namespaces holds the namespace URIs written into generated documents.
type Namespaces struct {
	WSDL     string
	Binding  string
	XSD      string
	Envelope string
}

// DefaultNamespaces returns the standard SOAP 1.1 / WSDL 1.1 namespaces.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		WSDL:     WSDLNamespace,
		Binding:  BindingNamespace,
		XSD:      XSDNamespace,
		Envelope: EnvelopeNamespace,
	}
}

// Contract describes the Echo service published at ServiceAddress, e.g.
// "http://127.0.0.1:5080". Its methods are safe for concurrent use.
type Contract struct {
	ServiceAddress string
	NS             Namespaces
}

// NewContract returns a Contract for address using the default namespaces.
func NewContract(address string) *Contract {
	return &Contract{
		ServiceAddress: strings.TrimRight(address, "/"),
		NS:             DefaultNamespaces(),
	}
}

// TargetNamespace is the service address followed by /echo/soap.
func (c *Contract) TargetNamespace() string {
	return c.ServiceAddress + servicePath
}

// SOAPAction is the action URI bound to the Echo operation.
func (c *Contract) SOAPAction() string {
	return c.TargetNamespace() + "/echo"
}

// Location is the endpoint address advertised by the service port.
func (c *Contract) Location() string {
	return c.TargetNamespace() + "/"
}

func marshalDocument(v any, indent bool) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = xml.MarshalIndent(v, "", "  ")
	} else {
		b, err = xml.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(b))
	out = append(out, xml.Header...)
	return append(out, b...), nil
}
