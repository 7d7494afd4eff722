package client

import (
	json "github.com/goccy/go-json"

	"github.com/fivetwenty-io/ods-client/internal/http"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

// handleResponse turns a received response into a decoded payload or one of
// the service/undecodable errors. 2xx bodies decode into T; anything else is
// read as an error envelope.
func handleResponse[T any](resp *http.Response) (*T, error) {
	if !resp.IsSuccess() {
		return nil, errorFromResponse(resp)
	}

	var payload T

	err := json.Unmarshal(resp.Body, &payload)
	if err != nil {
		return nil, &ods.DecodeError{
			StatusCode: resp.StatusCode,
			Target:     ods.DecodeTargetPayload,
			Body:       resp.Body,
			Err:        err,
		}
	}

	return &payload, nil
}

// handleEmptyResponse is used when a success carries no meaningful body. The
// body of a 2xx response is never inspected.
func handleEmptyResponse(resp *http.Response) error {
	if !resp.IsSuccess() {
		return errorFromResponse(resp)
	}

	return nil
}

func errorFromResponse(resp *http.Response) error {
	envelope, err := ods.ParseErrorEnvelope(resp.Body)
	if err != nil {
		return &ods.DecodeError{
			StatusCode: resp.StatusCode,
			Target:     ods.DecodeTargetEnvelope,
			Body:       resp.Body,
			Err:        err,
		}
	}

	return &ods.ServiceError{
		StatusCode: resp.StatusCode,
		Envelope:   *envelope,
	}
}
