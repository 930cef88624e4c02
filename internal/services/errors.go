package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
)

var (
	// ErrAccessDenied is returned when the backend rejects the credentials or
	// the credentials lack permission for the operation.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound is returned when the bucket or object does not exist.
	ErrNotFound = errors.New("not found")
)

var accessDeniedCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"InvalidToken":          true,
	"ExpiredToken":          true,
	"AllAccessDisabled":     true,
}

var notFoundCodes = map[string]bool{
	"NoSuchBucket": true,
	"NoSuchKey":    true,
	"NotFound":     true,
}

// classify maps an S3 error code or HTTP status onto the package sentinels.
func classify(op string, err error, code string, status int) error {
	switch {
	case accessDeniedCodes[code], status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%s: %w: %w", op, ErrAccessDenied, err)
	case notFoundCodes[code], status == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func classifyAWSError(op string, err error) error {
	if err == nil {
		return nil
	}
	var code string
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	var status int
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}
	return classify(op, err, code, status)
}

func classifyMinioError(op string, err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	return classify(op, err, resp.Code, resp.StatusCode)
}
