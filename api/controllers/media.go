package controllers

import (
	"net/http"

	"github.com/mmattyV/scentra-backend/api/middleware"
	"github.com/mmattyV/scentra-backend/api/responses"
	"github.com/mmattyV/scentra-backend/api/validators"
	mediasvc "github.com/mmattyV/scentra-backend/internal/media"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
	"github.com/mmattyV/scentra-backend/pkg/logger"
)

// MediaPresign issues a signed PUT URL so the client uploads the image
// straight to the bucket.
func MediaPresign(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var payload presignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseMediaKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media kind"))
			return
		}

		out, err := svc.PresignUpload(middleware.UserIDFromContext(r.Context()), mediasvc.PresignInput{
			Kind:      kind,
			MimeType:  payload.MimeType,
			FileName:  payload.FileName,
			SizeBytes: payload.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, out)
	}
}

// MediaReadURL issues a signed GET URL for a stored object key.
func MediaReadURL(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		out, err := svc.ReadURL(r.URL.Query().Get("key"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, out)
	}
}

type presignRequest struct {
	Kind      string `json:"kind" validate:"required"`
	MimeType  string `json:"mime_type" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`
}
