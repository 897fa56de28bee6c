package soap

import (
	"encoding/xml"
	"fmt"
)

type wsdlDefinitions struct {
	XMLName         xml.Name      `xml:"definitions"`
	TargetNamespace string        `xml:"targetNamespace,attr"`
	XMLNS           string        `xml:"xmlns,attr"`
	TNS             string        `xml:"xmlns:tns,attr"`
	SOAP            string        `xml:"xmlns:soap,attr"`
	XSD             string        `xml:"xmlns:xsd,attr"`
	Types           struct{}      `xml:"types"`
	Messages        []wsdlMessage `xml:"message"`
	PortType        wsdlPortType  `xml:"portType"`
	Binding         wsdlBinding   `xml:"binding"`
	Service         wsdlService   `xml:"service"`
}

type wsdlMessage struct {
	Name  string     `xml:"name,attr"`
	Parts []wsdlPart `xml:"part"`
}

type wsdlPart struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type wsdlPortType struct {
	Name       string              `xml:"name,attr"`
	Operations []wsdlPortOperation `xml:"operation"`
}

type wsdlPortOperation struct {
	Name   string         `xml:"name,attr"`
	Input  wsdlMessageRef `xml:"input"`
	Output wsdlMessageRef `xml:"output"`
}

type wsdlMessageRef struct {
	Message string `xml:"message,attr"`
}

type wsdlBinding struct {
	Name        string                 `xml:"name,attr"`
	Type        string                 `xml:"type,attr"`
	SOAPBinding soapBinding            `xml:"soap:binding"`
	Operations  []wsdlBindingOperation `xml:"operation"`
}

type soapBinding struct {
	Transport string `xml:"transport,attr"`
	Style     string `xml:"style,attr"`
}

type wsdlBindingOperation struct {
	Name          string        `xml:"name,attr"`
	SOAPOperation soapOperation `xml:"soap:operation"`
	Input         wsdlBodyUse   `xml:"input"`
	Output        wsdlBodyUse   `xml:"output"`
}

type soapOperation struct {
	SOAPAction string `xml:"soapAction,attr"`
}

type wsdlBodyUse struct {
	Body soapBody `xml:"soap:body"`
}

type soapBody struct {
	Use string `xml:"use,attr"`
}

type wsdlService struct {
	Name  string     `xml:"name,attr"`
	Ports []wsdlPort `xml:"port"`
}

type wsdlPort struct {
	Name    string      `xml:"name,attr"`
	Binding string      `xml:"binding,attr"`
	Address soapAddress `xml:"soap:address"`
}

type soapAddress struct {
	Location string `xml:"location,attr"`
}

// WSDL renders the service description: two messages, one port type with
// the Echo operation, one document/literal binding and one service port.
// The output depends only on the contract, so equal contracts produce
// identical bytes.
func (c *Contract) WSDL() ([]byte, error) {
	literal := wsdlBodyUse{Body: soapBody{Use: "literal"}}

	defs := wsdlDefinitions{
		TargetNamespace: c.TargetNamespace(),
		XMLNS:           c.NS.WSDL,
		TNS:             c.TargetNamespace(),
		SOAP:            c.NS.Binding,
		XSD:             c.NS.XSD,
		Messages: []wsdlMessage{
			{Name: "EchoRequest", Parts: []wsdlPart{{Name: "EchoRequest", Type: "xsd:string"}}},
			{Name: "EchoResponse", Parts: []wsdlPart{{Name: "EchoResponse", Type: "xsd:string"}}},
		},
		PortType: wsdlPortType{
			Name: "EchoPortType",
			Operations: []wsdlPortOperation{{
				Name:   "Echo",
				Input:  wsdlMessageRef{Message: "tns:EchoRequest"},
				Output: wsdlMessageRef{Message: "tns:EchoResponse"},
			}},
		},
		Binding: wsdlBinding{
			Name:        "EchoBinding",
			Type:        "tns:EchoPortType",
			SOAPBinding: soapBinding{Transport: HTTPTransport, Style: "document"},
			Operations: []wsdlBindingOperation{{
				Name:          "Echo",
				SOAPOperation: soapOperation{SOAPAction: c.SOAPAction()},
				Input:         literal,
				Output:        literal,
			}},
		},
		Service: wsdlService{
			Name: "EchoService",
			Ports: []wsdlPort{{
				Name:    "EchoPort",
				Binding: "tns:EchoBinding",
				Address: soapAddress{Location: c.Location()},
			}},
		},
	}

	b, err := marshalDocument(defs, true)
	if err != nil {
		return nil, fmt.Errorf("marshalling WSDL: %w", err)
	}
	return b, nil
}
