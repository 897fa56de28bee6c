package handler

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/dskow/echoer/internal/apierror"
)

//go:embed templates/index.html
var indexSource string

var indexTemplate = template.Must(template.New("index").Parse(indexSource))

type endpoint struct {
	Path        string
	Methods     string
	Description string
}

var endpoints = []endpoint{
	{"/echo/rest", "GET POST PUT PATCH DELETE", "JSON echo document; op_result is the raw body"},
	{"/echo/rest/{param}", "GET POST PUT PATCH DELETE", "as above, with the escaped path parameter in request.params"},
	{"/echo/soap?wsdl", "GET", "WSDL describing the Echo operation"},
	{"/echo/soap", "POST", "SOAP 1.1 Echo; EchoResponse carries the JSON echo document"},
	{"/echo/rpc", "POST", `JSON-RPC 2.0 envelope; the only method is "echo"`},
}

type indexData struct {
	Endpoints []endpoint
	WSDL      string
}

// Index renders the endpoint overview.
func (e *Echo) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := indexData{Endpoints: endpoints, WSDL: e.Contract().TargetNamespace() + "?wsdl"}
	if err := indexTemplate.Execute(&buf, data); err != nil {
		e.logger.Error("rendering index failed", "error", err)
		apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "an unexpected error occurred")
		return
	}
	writeBody(w, http.StatusOK, contentTypeHTML, buf.Bytes())
}
