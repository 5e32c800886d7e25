package services

import (
	"strings"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
)

// CardDetails is the card payload accepted at checkout. No real processor is
// involved; validation is an in-process stub.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// ValidateCard checks the stub card rules in a fixed order: missing fields
// first, then the decline marker, then number length, then CVC shape. A
// number ending in 0000 simulates a processor decline.
func ValidateCard(card *CardDetails) error {
	if card == nil || card.Number == "" || card.Expiry == "" || card.CVC == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "Incomplete card details")
	}

	stripped := strings.ReplaceAll(strings.ReplaceAll(card.Number, " ", ""), "-", "")

	if strings.HasSuffix(stripped, "0000") {
		return apperrors.ErrCardDeclined
	}

	if len(stripped) != 16 || !allDigits(stripped) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "Card number must be 16 digits")
	}

	if len(card.CVC) != 3 || !allDigits(card.CVC) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "CVC must be 3 digits")
	}

	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
