package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dskow/echoer/internal/apierror"
)

var (
	pageMethods = []string{http.MethodGet, http.MethodHead}
	restMethods = []string{
		http.MethodGet, http.MethodHead, http.MethodPost,
		http.MethodPut, http.MethodPatch, http.MethodDelete,
	}
)

// NewRouter returns a router serving the echo surfaces under /echo. Unknown
// paths and unsupported methods are answered with apierror bodies. Callers
// may register further routes (probes, metrics) on the result.
func NewRouter(e *Echo) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = apierror.NotFound()
	r.MethodNotAllowedHandler = apierror.NotAllowed()

	r.Handle("/", http.RedirectHandler("/echo", http.StatusFound)).Methods(pageMethods...)
	r.HandleFunc("/echo", e.Index).Methods(pageMethods...)
	r.HandleFunc("/echo/", e.Index).Methods(pageMethods...)

	r.HandleFunc("/echo/rest", e.REST).Methods(restMethods...)
	r.HandleFunc("/echo/rest/{param}", e.REST).Methods(restMethods...)

	r.HandleFunc("/echo/soap", e.WSDL).Methods(pageMethods...)
	r.HandleFunc("/echo/soap", e.SOAP).Methods(http.MethodPost)

	r.HandleFunc("/echo/rpc", e.RPC).Methods(http.MethodPost)

	return r
}
