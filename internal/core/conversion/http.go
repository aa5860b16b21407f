// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package conversion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/keldaan-ag/gedcom-shp/internal/core/genealogy"
	"github.com/keldaan-ag/gedcom-shp/internal/core/geometry"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/apperr"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/blob"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/constants"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/ctxutil"
	requestutil "github.com/keldaan-ag/gedcom-shp/internal/platform/request"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/respond"
	"github.com/keldaan-ag/gedcom-shp/internal/platform/validate"
)

// Handler exposes conversion runs over HTTP. It admits one run at a time.
type Handler struct {
	service     *Service
	defaultRoot string
	busy        atomic.Bool
}

// NewHandler constructs a [Handler]. defaultRoot is used when a request has
// no root parameter.
func NewHandler(service *Service, defaultRoot string) *Handler {
	return &Handler{service: service, defaultRoot: defaultRoot}
}

// RegisterRoutes mounts the conversion endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.convert)
	router.Get("/outputs", handler.listOutputs)
	router.Get("/outputs/*", handler.getOutput)
}

// convert runs the pipeline on the parser JSON of the request body.
//
// Query parameters: root (Sosa root by id or name), fields (comma separated
// date properties).
func (handler *Handler) convert(writer http.ResponseWriter, request *http.Request) {

	// 1. Validate parameters before touching the body
	fields, err := geometry.ParseFields(requestutil.Query(request, "fields"))
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("fields", err.Error()))
		return
	}

	root := requestutil.Query(request, "root")
	if root == "" {
		root = handler.defaultRoot
	}

	// 2. Single run guard
	if !handler.busy.CompareAndSwap(false, true) {
		respond.Error(writer, request, apperr.Conflict("A conversion is already running"))
		return
	}
	defer handler.busy.Store(false)

	// 3. Run
	logger := ctxutil.GetLogger(request.Context())
	result, err := handler.service.Convert(request.Context(), Request{
		Input:  requestutil.Body(writer, request, constants.MaxUploadBytes),
		Source: requestutil.Query(request, "source"),
		Root:   root,
		Fields: fields,
	}, ObserverFunc(func(event Event) {
		if event.Progress == nil {
			logger.Debug("conversion_stage", slog.String("stage", string(event.Stage)))
		}
	}))
	if err != nil {
		respond.Error(writer, request, convertError(err))
		return
	}

	respond.Created(writer, result)
}

// listOutputs lists stored objects under an optional prefix.
func (handler *Handler) listOutputs(writer http.ResponseWriter, request *http.Request) {
	store := handler.service.Store()
	if store == nil {
		respond.Error(writer, request, apperr.NotFound("Output store"))
		return
	}

	infos, err := store.List(request.Context(), requestutil.Query(request, "prefix"))
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	respond.OK(writer, infos)
}

// getOutput streams one stored object.
func (handler *Handler) getOutput(writer http.ResponseWriter, request *http.Request) {
	store := handler.service.Store()
	if store == nil {
		respond.Error(writer, request, apperr.NotFound("Output store"))
		return
	}

	info, body, err := store.Get(request.Context(), chi.URLParam(request, "*"))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
			respond.Error(writer, request, apperr.NotFound("Output").WithCause(err))
			return
		}
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	defer body.Close()

	header := writer.Header()
	if info.ContentType != "" {
		header.Set("Content-Type", info.ContentType)
	}
	if info.ETag != "" {
		header.Set("ETag", info.ETag)
	}
	header.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	writer.WriteHeader(http.StatusOK)

	if _, err := io.Copy(writer, body); err != nil {
		ctxutil.GetLogger(request.Context()).Warn("output_stream_interrupted",
			slog.String("key", info.Key),
			slog.Any("error", err),
		)
	}
}

// convertError maps a run failure onto the API error taxonomy.
func convertError(err error) *apperr.AppError {
	if tooLarge := requestutil.BodyError(err); tooLarge != nil {
		return tooLarge
	}

	switch {
	case errors.Is(err, genealogy.ErrInvalidRecord), errors.Is(err, ErrNoInput):
		return validate.ErrInvalidJSON.WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.GatewayTimeout(err)
	default:
		return apperr.Internal(err)
	}
}
