package httpserver

import (
	"errors"
	"net/http"

	apierrors "github.com/MintForge/server/internal/errors"
	"github.com/MintForge/server/internal/payment"
)

// writeServiceError maps a payment service error onto the API error envelope.
// Unknown errors are reported as internal without leaking detail.
func writeServiceError(w http.ResponseWriter, err error) {
	var pe *payment.Error
	if errors.As(err, &pe) {
		var details map[string]interface{}
		if pe.Code == apierrors.ErrCodeInsufficientAmount {
			details = map[string]interface{}{
				"expectedLamports": pe.Expected,
				"receivedLamports": pe.Received,
			}
		}
		apierrors.WriteError(w, pe.Code, pe.Message, details)
		return
	}

	apierrors.WriteSimpleError(w, apierrors.ErrCodeInternalError, "internal error")
}
