package httpErrors

import (
	"errors"
	"net/http"

	dErrors "fitrelay/pkg/domain-errors"
)

// ToHTTPStatus maps a domain error code to an HTTP status.
// Credential problems map to 401 so the frontend can prompt a reconnect;
// transient infrastructure failures map to gateway-style 5xx codes.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeNoCredential, dErrors.CodeRefreshFailed:
		return http.StatusUnauthorized
	case dErrors.CodeUpstreamUnreachable:
		return http.StatusBadGateway
	case dErrors.CodeStoreError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// StatusFor resolves the HTTP status for any error, defaulting to 500 for
// errors that carry no domain code.
func StatusFor(err error) (int, dErrors.Code) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return ToHTTPStatus(de.Code), de.Code
	}
	return http.StatusInternalServerError, dErrors.CodeInternal
}
