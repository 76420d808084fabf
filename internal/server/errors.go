package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/controller"
	"github.com/goliatone/go-formbuilder/pkg/filler"
	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

const maxUploadBytes = media.MaxReadBytes

// errBadRequest marks malformed form input.
var errBadRequest = errors.New("server: bad request")

func statusFor(err error) int {
	var verr *validation.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, controller.ErrWrongMode), errors.Is(err, store.ErrExists):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrTemplateNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, builder.ErrFieldNotFound),
		errors.Is(err, builder.ErrOptionIndex),
		errors.Is(err, filler.ErrFieldNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrInvalid),
		errors.Is(err, orchestrator.ErrTemplateRequired),
		errors.Is(err, builder.ErrUnknownFieldType),
		errors.Is(err, builder.ErrWrongFieldType),
		errors.Is(err, builder.ErrInvalidPattern),
		errors.Is(err, builder.ErrInvalidBounds),
		errors.Is(err, builder.ErrInvalidNumber),
		errors.Is(err, builder.ErrUnknownFormat),
		errors.Is(err, filler.ErrTypeMismatch),
		errors.Is(err, filler.ErrUnknownOption),
		errors.Is(err, media.ErrTooLarge),
		errors.Is(err, media.ErrNotDataURL):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// message is the user-facing text for err. Internal errors are not echoed.
func message(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "Something went wrong. Please try again."
	}
	return err.Error()
}
