package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-viper/mapstructure/v2"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/blogapi"
	"github.com/openkcm/blog-client/internal/posts"
	"github.com/openkcm/blog-client/internal/serviceerr"
)

const maxUploadSize = 10 << 20

// errorModel is the body of every error response.
type errorModel struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	FieldErrors      posts.FieldErrors `json:"fieldErrors,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slogctx.Error(ctx, "Failed to write response", "error", err)
	}
}

func toErrorModel(err error) (model errorModel, httpStatus int) {
	var serviceErr *serviceerr.Error
	if !errors.As(err, &serviceErr) {
		serviceErr = serviceerr.ErrUnknown
	}

	return errorModel{
		Error:            string(serviceErr.Err),
		ErrorDescription: serviceErr.Description,
	}, serviceErr.HTTPStatus()
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	body, status := toErrorModel(err)
	if status >= http.StatusInternalServerError {
		slogctx.Error(ctx, "Request failed", "error", err)
	} else {
		slogctx.Debug(ctx, "Request rejected", "error", err)
	}

	writeJSON(ctx, w, status, body)
}

func writeFieldErrors(ctx context.Context, w http.ResponseWriter, fieldErrors posts.FieldErrors) {
	writeJSON(ctx, w, http.StatusUnprocessableEntity, errorModel{
		Error:            string(serviceerr.CodeValidationFailed),
		ErrorDescription: serviceerr.ErrValidationFailed.Description,
		FieldErrors:      fieldErrors,
	})
}

// bindForm decodes a JSON, urlencoded or multipart body into dst. Field
// names come from the json tags of dst; scalar values are converted weakly.
// Bodies are capped at maxUploadSize.
func bindForm(w http.ResponseWriter, r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	}

	values := map[string]any{}

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			if maxErr := new(http.MaxBytesError); errors.As(err, &maxErr) {
				return serviceerr.ErrInvalidRequest.WithDescription("request body too large")
			}

			return serviceerr.ErrInvalidRequest.WithDescription("malformed JSON body")
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return serviceerr.ErrInvalidRequest.WithDescription("malformed multipart body")
		}

		flattenForm(values, r)
	default:
		if err := r.ParseForm(); err != nil {
			return serviceerr.ErrInvalidRequest.WithDescription("malformed form body")
		}

		flattenForm(values, r)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("creating form decoder: %w", err)
	}

	if err := dec.Decode(values); err != nil {
		return serviceerr.ErrInvalidRequest.WithDescription(err.Error())
	}

	return nil
}

func flattenForm(values map[string]any, r *http.Request) {
	for k, v := range r.Form {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}
}

// formFile returns the uploaded file for field, or nil when none was sent.
// The returned function releases the file.
func formFile(r *http.Request, field string) (*blogapi.File, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}

	f, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}

		return nil, nil, serviceerr.ErrInvalidRequest.WithDescription("reading " + field)
	}

	return &blogapi.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
