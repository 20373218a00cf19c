package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/limits"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON reads the request body into dst and validates its
// `validate` tags. An empty body leaves dst at its zero value; the tags
// then decide whether that is acceptable. Failures are Validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("malformed JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Validation(describe(err))
	}
	return nil
}

func describe(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fe.Field()+" has too many entries")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
