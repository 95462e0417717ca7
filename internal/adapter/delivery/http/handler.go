package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shortener-kv/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, notImplementedResponse)
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, url string) (*entity.Mapping, error)
	ResolveShortCode(ctx context.Context, code string) (entity.Resolution, error)
}

type urlHandler struct {
	useCase         urlUseCase
	validate        *validator.Validate
	redirectBaseURL string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, redirectBaseURL string) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:         useCase,
		validate:        validate,
		redirectBaseURL: redirectBaseURL,
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	mapping, err := h.useCase.ShortenURL(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidArguments) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Message: "invalid url"})
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toURLResponse(h.redirectBaseURL, mapping))
}

func (h *urlHandler) resolveShortCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	res, err := h.useCase.ResolveShortCode(r.Context(), code)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	switch res.Kind {
	case entity.ResolutionRedirect:
		http.Redirect(w, r, res.URL, http.StatusMovedPermanently)
	case entity.ResolutionNotFound:
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
	default:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidCodeResponse(res.Reason))
	}
}
