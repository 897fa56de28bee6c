package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dskow/echoer/internal/apierror"
	"github.com/dskow/echoer/internal/echo"
	"github.com/dskow/echoer/internal/metrics"
	"github.com/dskow/echoer/internal/middleware"
	"github.com/dskow/echoer/internal/soap"
)

// WSDL serves the service description for GET /echo/soap?wsdl. Without the
// wsdl query key the resource does not exist.
func (e *Echo) WSDL(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.URL.Query()["wsdl"]; !ok {
		apierror.WriteJSON(w, r, http.StatusNotFound, apierror.RouteNotFound, "no matching route")
		return
	}

	start := time.Now()
	doc, err := e.Contract().WSDL()
	if err != nil {
		metrics.Observe(metrics.ProtocolWSDL, metrics.OutcomeError, start)
		e.logger.Error("rendering WSDL failed", "error", err)
		apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "an unexpected error occurred")
		return
	}
	metrics.Observe(metrics.ProtocolWSDL, metrics.OutcomeOK, start)
	writeBody(w, http.StatusOK, contentTypeXML, doc)
}

// SOAP handles the Echo operation. The response text is the JSON-encoded echo
// document; every client-side failure is answered with a Client fault.
func (e *Echo) SOAP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() { metrics.Observe(metrics.ProtocolSOAP, outcome, start) }()

	body, ok := e.readBody(w, r, metrics.ProtocolSOAP)
	if !ok {
		outcome = metrics.OutcomeError
		return
	}

	contract := e.Contract()
	requestID := middleware.GetRequestID(r.Context())

	text, err := contract.ParseEchoRequest(body)
	if err != nil {
		outcome = metrics.OutcomeFault
		e.logger.Debug("soap request rejected", "error", err, "request_id", requestID)
		e.fault(w, r, contract, faultKind(err), err.Error())
		return
	}

	doc, err := echo.Normalize(echo.FromHTTP(r, body), nil, text)
	if err != nil {
		outcome = metrics.OutcomeFault
		e.logger.Debug("soap body is not UTF-8", "request_id", requestID)
		e.fault(w, r, contract, "decode", msgInvalidUnicode)
		return
	}

	docJSON, err := echo.Marshal(doc)
	if err != nil {
		outcome = metrics.OutcomeError
		apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "response could not be encoded")
		return
	}
	response := string(docJSON)
	envelope, err := contract.SuccessEnvelope(&response)
	if err != nil {
		outcome = metrics.OutcomeError
		e.logger.Error("encoding soap response failed", "error", err, "request_id", requestID)
		apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "response could not be encoded")
		return
	}
	writeBody(w, http.StatusOK, contentTypeXMLUTF8, envelope)
}

func (e *Echo) fault(w http.ResponseWriter, r *http.Request, contract *soap.Contract, kind, message string) {
	metrics.Fault(metrics.ProtocolSOAP, kind)
	envelope, err := contract.FaultEnvelope(soap.FaultClient, message)
	if err != nil {
		apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "fault could not be encoded")
		return
	}
	writeBody(w, http.StatusInternalServerError, contentTypeXML, envelope)
}

func faultKind(err error) string {
	switch {
	case errors.Is(err, soap.ErrEmptyBody):
		return "empty_body"
	case errors.Is(err, soap.ErrMissingRequestElement):
		return "missing_request_element"
	default:
		return "malformed_xml"
	}
}
