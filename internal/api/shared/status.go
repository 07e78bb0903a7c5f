package shared

import (
	"net/http"

	"github.com/cardboardgarden/garden-api/internal/service/account"
)

// StatusForKind maps an account operation outcome to an HTTP status.
func StatusForKind(kind account.ErrorKind) int {
	switch kind {
	case account.KindNone:
		return http.StatusOK
	case account.KindDuplicateUsername, account.KindDuplicateEmail:
		return http.StatusConflict
	case account.KindInvalidInput, account.KindInvalidToken, account.KindTokenExpired:
		return http.StatusBadRequest
	case account.KindInvalidCredentials, account.KindUnauthorized:
		return http.StatusUnauthorized
	case account.KindAccountDeactivated, account.KindEmailNotVerified:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
