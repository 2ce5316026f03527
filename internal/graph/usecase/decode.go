package usecase

import (
	"encoding/base64"
	"errors"
	"strings"
)

// DecodeError reports a malformed transport payload: either the content-type
// separator is missing or the base64 body does not decode.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "malformed upload payload: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// decodeUpload reverses the browser transport encoding: a content-type
// descriptor and a base64 body joined by the first comma.
func decodeUpload(content string) (string, []byte, error) {
	contentType, payload, found := strings.Cut(content, ",")
	if !found {
		return "", nil, &DecodeError{Err: errors.New("missing content-type separator")}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, &DecodeError{Err: err}
	}

	return contentType, data, nil
}
