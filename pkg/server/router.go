package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/pkg/risk"
	"github.com/climatenav/navigator/pkg/route"
	"github.com/climatenav/navigator/pkg/routing"
	"github.com/climatenav/navigator/pkg/spatial"
)

// Controller binds http requests to a RoutingServicer and writes the
// service results to the http response.
type Controller struct {
	service RoutingServicer
}

func NewController(service RoutingServicer) *Controller {
	return &Controller{service: service}
}

// NewRouter builds the mux router for the routing API.
func NewRouter(c *Controller) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/routes", c.ResolveRoute).Methods(http.MethodPost)
	r.HandleFunc("/routes/compare", c.CompareRoutes).Methods(http.MethodPost)
	r.HandleFunc("/snapshot/version", c.SnapshotVersion).Methods(http.MethodGet)
	return r
}

func (c *Controller) ResolveRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := c.service.ResolveRoute(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *Controller) CompareRoutes(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := c.service.CompareRoutes(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *Controller) SnapshotVersion(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.SnapshotVersion(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// statusFor maps the engine's typed outcomes onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case eris.Is(err, spatial.ErrNotFound):
		return http.StatusNotFound
	case eris.Is(err, route.ErrNoRouteFound):
		return http.StatusNotFound
	case eris.Is(err, risk.ErrInvalidProfile):
		return http.StatusBadRequest
	case eris.Is(err, routing.ErrStaleSnapshot):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	} else {
		zap.L().Debug("request rejected", zap.Error(err))
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}
