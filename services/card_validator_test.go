package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/services"
)

func TestValidateCard_Success(t *testing.T) {
	err := services.ValidateCard(&services.CardDetails{
		Number: "4111 1111 1111 1234",
		Expiry: "12/27",
		CVC:    "123",
	})
	assert.NoError(t, err)
}

func TestValidateCard_Incomplete(t *testing.T) {
	cases := []*services.CardDetails{
		nil,
		{Number: "", Expiry: "12/27", CVC: "123"},
		{Number: "4111111111111234", Expiry: "", CVC: "123"},
		{Number: "4111111111111234", Expiry: "12/27", CVC: ""},
	}
	for _, card := range cases {
		err := services.ValidateCard(card)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestValidateCard_DeclinedSuffix(t *testing.T) {
	err := services.ValidateCard(&services.CardDetails{
		Number: "4111-1111-1111-0000",
		Expiry: "12/27",
		CVC:    "123",
	})
	assert.ErrorIs(t, err, apperrors.ErrCardDeclined)
}

func TestValidateCard_DeclineCheckedBeforeLength(t *testing.T) {
	// a short number ending in 0000 still reads as a decline
	err := services.ValidateCard(&services.CardDetails{
		Number: "0000",
		Expiry: "12/27",
		CVC:    "123",
	})
	assert.ErrorIs(t, err, apperrors.ErrCardDeclined)
}

func TestValidateCard_WrongLength(t *testing.T) {
	err := services.ValidateCard(&services.CardDetails{
		Number: "4111 1111 1111",
		Expiry: "12/27",
		CVC:    "123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidateCard_BadCVC(t *testing.T) {
	for _, cvc := range []string{"12", "1234", "12a"} {
		err := services.ValidateCard(&services.CardDetails{
			Number: "4111111111111234",
			Expiry: "12/27",
			CVC:    cvc,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}
