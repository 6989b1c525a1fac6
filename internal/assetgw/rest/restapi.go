/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rest exposes asset operations as a JSON HTTP API.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/fabric-rest/assetgw/common/flogging"
	"github.com/fabric-rest/assetgw/core/middleware"
	"github.com/fabric-rest/assetgw/internal/assetgw/assets"
	"github.com/fabric-rest/assetgw/internal/pkg/gateway"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const (
	URLInit          = "/"
	URLAssets        = "/api/assets"
	URLTransfer      = URLAssets + "/transfer"
	URLUpdate        = URLAssets + "/update"
	URLData          = "/api/data"
	assetIDKey       = "assetId"
	urlWithAssetID   = URLAssets + "/{" + assetIDKey + "}"
	maxRequestBytes  = 1 << 20
	waitForCommitKey = "wait"
)

// AssetService performs asset operations on the ledger.
type AssetService interface {
	SubmitOptions(wait *bool) gateway.SubmitOptions
	InitLedger(ctx context.Context, opts gateway.SubmitOptions) ([]byte, error)
	Create(ctx context.Context, asset assets.Asset, opts gateway.SubmitOptions) (string, error)
	Transfer(ctx context.Context, assetID, newOwner string) (*assets.TransferResult, error)
	Read(ctx context.Context, assetID string) (assets.Asset, error)
	List(ctx context.Context) ([]assets.Asset, error)
	Update(ctx context.Context, asset assets.Asset, opts gateway.SubmitOptions) error
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateResponse struct {
	Message string `json:"message"`
	AssetID string `json:"assetId"`
}

type TransferRequest struct {
	AssetID  string `json:"assetId"`
	NewOwner string `json:"newOwner"`
}

type TransferResponse struct {
	Message  string `json:"message"`
	OldOwner string `json:"oldOwner"`
	NewOwner string `json:"newOwner"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// HTTPHandler handles all the HTTP requests to the asset API.
type HTTPHandler struct {
	logger  *flogging.FabricLogger
	service AssetService
	router  *mux.Router
}

func NewHTTPHandler(service AssetService) *HTTPHandler {
	handler := &HTTPHandler{
		logger:  flogging.MustGetLogger("assetgw.rest"),
		service: service,
		router:  mux.NewRouter(),
	}

	handler.router.HandleFunc(URLInit, handler.serveInit).Methods(http.MethodGet).Name("init")
	handler.router.HandleFunc(URLInit, handler.serveNotAllowed(http.MethodGet))

	handler.router.HandleFunc(URLAssets, handler.serveCreate).Methods(http.MethodPost).Name("create")
	handler.router.HandleFunc(URLAssets, handler.serveNotAllowed(http.MethodPost))

	handler.router.HandleFunc(URLTransfer, handler.serveTransfer).Methods(http.MethodPost).Name("transfer")
	handler.router.HandleFunc(URLTransfer, handler.serveNotAllowed(http.MethodPost))

	handler.router.HandleFunc(URLUpdate, handler.serveUpdate).Methods(http.MethodPost).Name("update")
	handler.router.HandleFunc(URLUpdate, handler.serveNotAllowed(http.MethodPost))

	handler.router.HandleFunc(URLData, handler.serveList).Methods(http.MethodGet).Name("list")
	handler.router.HandleFunc(URLData, handler.serveNotAllowed(http.MethodGet))

	handler.router.HandleFunc(urlWithAssetID, handler.serveRead).Methods(http.MethodGet).Name("read")
	handler.router.HandleFunc(urlWithAssetID, handler.serveNotAllowed(http.MethodGet))

	handler.router.NotFoundHandler = http.HandlerFunc(handler.serveNotFound)

	return handler
}

func (h *HTTPHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	h.router.ServeHTTP(resp, req)
}

// RouteName names the API route that matches req, for request metrics.
func (h *HTTPHandler) RouteName(req *http.Request) string {
	var match mux.RouteMatch
	if h.router.Match(req, &match) && match.Route != nil && match.Route.GetName() != "" {
		return match.Route.GetName()
	}
	if match.MatchErr == mux.ErrMethodMismatch || (match.Route != nil && match.Route.GetName() == "") {
		return "method_not_allowed"
	}
	return "not_found"
}

// Initialize the ledger
func (h *HTTPHandler) serveInit(resp http.ResponseWriter, req *http.Request) {
	opts, err := h.submitOptions(req)
	if err != nil {
		h.sendResponseJsonError(resp, req, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.InitLedger(req.Context(), opts)
	if err != nil {
		h.sendLedgerError(resp, req, "Failed to initialize ledger", err)
		return
	}

	resp.Header().Set("Content-Type", "application/octet-stream")
	resp.WriteHeader(http.StatusOK)
	resp.Write(result)
}

// Create an asset
func (h *HTTPHandler) serveCreate(resp http.ResponseWriter, req *http.Request) {
	opts, err := h.submitOptions(req)
	if err != nil {
		h.sendResponseJsonError(resp, req, http.StatusBadRequest, err)
		return
	}

	var asset assets.Asset
	if err := decodeBody(resp, req, &asset); err != nil {
		h.sendResponseJsonError(resp, req, http.StatusBadRequest, err)
		return
	}

	id, err := h.service.Create(req.Context(), asset, opts)
	if err != nil {
		h.sendLedgerError(resp, req, "Failed to create asset", err)
		return
	}

	h.sendResponse(resp, req, http.StatusCreated, &CreateResponse{
		Message: "Asset created successfully",
		AssetID: id,
	})
}

// Transfer an asset to a new owner
func (h *HTTPHandler) serveTransfer(resp http.ResponseWriter, req *http.Request) {
	var transfer TransferRequest
	if err := decodeBody(resp, req, &transfer); err != nil {
		h.sendResponseJsonError(resp, req, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.Transfer(req.Context(), transfer.AssetID, transfer.NewOwner)
	if err != nil {
		h.sendLedgerError(resp, req, "Failed to transfer asset", err)
		return
	}

	h.sendResponse(resp, req, http.StatusOK, &TransferResponse{
		Message:  "Transaction committed successfully",
		OldOwner: result.OldOwner,
		NewOwner: result.NewOwner,
	})
}

// List all assets
func (h *HTTPHandler) serveList(resp http.ResponseWriter, req *http.Request) {
	list, err := h.service.List(req.Context())
	if err != nil {
		h.sendLedgerError(resp, req, "Failed to retrieve assets", err)
		return
	}
	h.sendResponse(resp, req, http.StatusOK, list)
}

// Read a single asset
func (h *HTTPHandler) serveRead(resp http.ResponseWriter, req *http.Request) {
	assetID := mux.Vars(req)[assetIDKey]

	asset, err := h.service.Read(req.Context(), assetID)
	if err != nil {
		h.sendLedgerError(resp, req, "Failed to read asset", err)
		return
	}
	h.sendResponse(resp, req, http.StatusOK, asset)
}

// Update an asset
func (h *HTTPHandler) serveUpdate(resp http.ResponseWriter, req *http.Request) {
	opts, err := h.submitOptions(req)
	if err != nil {
		h.sendResponseJsonError(resp, req, http.StatusBadRequest, err)
		return
	}

	var asset assets.Asset
	if err := decodeBody(resp, req, &asset); err != nil {
		h.sendResponseJsonError(resp, req, http.StatusBadRequest, err)
		return
	}

	if err := h.service.Update(req.Context(), asset, opts); err != nil {
		h.sendLedgerError(resp, req, "Failed to update asset", err)
		return
	}

	h.sendResponse(resp, req, http.StatusOK, &MessageResponse{
		Message: "Asset " + asset.ID + " updated successfully",
	})
}

func (h *HTTPHandler) serveNotAllowed(allow ...string) http.HandlerFunc {
	allowed := strings.Join(allow, ", ")
	return func(resp http.ResponseWriter, req *http.Request) {
		resp.Header().Set("Allow", allowed)
		err := errors.Errorf("invalid request method: %s", req.Method)
		h.sendResponseJsonError(resp, req, http.StatusMethodNotAllowed, err)
	}
}

func (h *HTTPHandler) serveNotFound(resp http.ResponseWriter, req *http.Request) {
	err := errors.Errorf("no such resource: %s", req.URL.Path)
	h.sendResponseJsonError(resp, req, http.StatusNotFound, err)
}

// submitOptions applies the optional wait query parameter to the default
// submit options.
func (h *HTTPHandler) submitOptions(req *http.Request) (gateway.SubmitOptions, error) {
	value, ok := req.URL.Query()[waitForCommitKey]
	if !ok {
		return h.service.SubmitOptions(nil), nil
	}
	if len(value) != 1 || value[0] == "" {
		return h.service.SubmitOptions(nil), errors.Errorf("invalid %s parameter: a single boolean is required", waitForCommitKey)
	}
	wait, err := strconv.ParseBool(value[0])
	if err != nil {
		return h.service.SubmitOptions(nil), errors.Errorf("invalid %s parameter: %q is not a boolean", waitForCommitKey, value[0])
	}
	return h.service.SubmitOptions(&wait), nil
}

func decodeBody(resp http.ResponseWriter, req *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(resp, req.Body, maxRequestBytes))
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}

// sendLedgerError reports a failed asset operation. Rejected input is a 400
// carrying the reason; any other failure is a 500 with the generic message.
func (h *HTTPHandler) sendLedgerError(resp http.ResponseWriter, req *http.Request, message string, err error) {
	var validationErr *assets.ValidationError
	if errors.As(err, &validationErr) {
		h.sendResponseJsonError(resp, req, http.StatusBadRequest, validationErr)
		return
	}

	h.logger.Errorw(message,
		"requestID", middleware.RequestID(req.Context()),
		"method", req.Method,
		"path", req.URL.Path,
		"kind", gateway.Classify(err),
		"error", err,
	)
	h.sendResponse(resp, req, http.StatusInternalServerError, &ErrorResponse{Error: message})
}

func (h *HTTPHandler) sendResponseJsonError(resp http.ResponseWriter, req *http.Request, code int, err error) {
	h.logger.Debugw("Rejected request", "requestID", middleware.RequestID(req.Context()), "method", req.Method, "path", req.URL.Path, "code", code, "error", err)
	h.sendResponse(resp, req, code, &ErrorResponse{Error: err.Error()})
}

func (h *HTTPHandler) sendResponse(resp http.ResponseWriter, req *http.Request, code int, payload interface{}) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	if err := json.NewEncoder(resp).Encode(payload); err != nil {
		h.logger.Errorw("failed to encode response", "requestID", middleware.RequestID(req.Context()), "error", err)
	}
}
