package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/procurehub/portal/pkg/types"
)

type requestIDKey struct{}

// WithRequestID stores the request id so error envelopes can echo it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteError maps err onto the error envelope. Only codes whose metadata allows
// it echo the service message; everything else gets the public message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.HTTPStatus < http.StatusInternalServerError {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:      string(typed.Code()),
			Message:   msg,
			RequestID: RequestID(ctx),
		},
	}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			fields := dump.Fields()
			fields["http_status"] = meta.HTTPStatus
			logg.Error(logg.WithFields(ctx, fields), "request.error", err)
		} else {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"error":       dump.TopMessage,
				"error_code":  dump.Code,
				"http_status": meta.HTTPStatus,
			}), "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// An unencodable payload is replaced by an internal error envelope.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(types.ErrorEnvelope{Error: types.APIError{
			Code:    string(pkgerrors.CodeInternal),
			Message: pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage,
		}})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
