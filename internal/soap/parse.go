package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Request parsing errors. The messages of ErrEmptyBody and
// ErrMissingRequestElement are returned to clients verbatim as faultstrings.
var (
	ErrMalformedXML          = errors.New("malformed XML")
	ErrEmptyBody             = errors.New("Empty SOAP Body")             //nolint:staticcheck
	ErrMissingRequestElement = errors.New("Missing EchoRequest element") //nolint:staticcheck
)

// requestElement is the local name of the Body child carrying the echo text.
const requestElement = "EchoRequest"

// element is the minimal tree the parser needs: a resolved name, the
// character data preceding the first child, and the child elements.
type element struct {
	name     xml.Name
	text     string
	children []*element
}

// ParseEchoRequest extracts the EchoRequest text from a SOAP request using the
// standard envelope namespace.
func ParseEchoRequest(data []byte) (string, error) {
	return parseEchoRequest(data, EnvelopeNamespace)
}

// ParseEchoRequest extracts the EchoRequest text using the contract's
// envelope namespace.
func (c *Contract) ParseEchoRequest(data []byte) (string, error) {
	return parseEchoRequest(data, c.NS.Envelope)
}

func parseEchoRequest(data []byte, envelopeNS string) (string, error) {
	root, err := parseTree(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	body := findDescendant(root, xml.Name{Space: envelopeNS, Local: "Body"})
	if body == nil || len(body.children) == 0 {
		return "", ErrEmptyBody
	}

	for _, child := range body.children {
		if child.name.Local == requestElement {
			// An empty request is valid and echoes as "".
			return child.text, nil
		}
	}
	return "", ErrMissingRequestElement
}

// parseTree reads a complete XML document. Anything other than whitespace,
// comments and processing instructions outside the root element is an error.
func parseTree(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root   *element
		stack  []*element
		scopes [][]string
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			scopes = append(scopes, declaredNamespaces(t.Attr))
			if err := checkPrefixes(t, scopes); err != nil {
				return nil, err
			}
			el := &element{name: t.Name}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("junk after document element")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.New("text outside document element")
				}
				continue
			}
			top := stack[len(stack)-1]
			if len(top.children) == 0 {
				top.text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no element found")
	}
	if len(stack) > 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// xmlNamespace is bound to the xml prefix without a declaration.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

func isNamespaceDecl(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

func declaredNamespaces(attrs []xml.Attr) []string {
	var uris []string
	for _, a := range attrs {
		if isNamespaceDecl(a) {
			uris = append(uris, a.Value)
		}
	}
	return uris
}

// checkPrefixes rejects element and attribute names whose prefix was never
// declared. encoding/xml leaves such a prefix in Name.Space instead of a URI.
func checkPrefixes(t xml.StartElement, scopes [][]string) error {
	resolved := func(space string) bool {
		if space == "" || space == xmlNamespace {
			return true
		}
		for _, uris := range scopes {
			for _, uri := range uris {
				if uri == space {
					return true
				}
			}
		}
		return false
	}
	if !resolved(t.Name.Space) {
		return fmt.Errorf("unbound prefix %q on element %s", t.Name.Space, t.Name.Local)
	}
	for _, a := range t.Attr {
		if isNamespaceDecl(a) {
			continue
		}
		if !resolved(a.Name.Space) {
			return fmt.Errorf("unbound prefix %q on attribute %s", a.Name.Space, a.Name.Local)
		}
	}
	return nil
}

// findDescendant returns the first element below root, in document order,
// named name. root itself is not considered.
func findDescendant(root *element, name xml.Name) *element {
	for _, child := range root.children {
		if child.name == name {
			return child
		}
		if found := findDescendant(child, name); found != nil {
			return found
		}
	}
	return nil
}
