package passes_test

import (
	"testing"
	"time"

	"ms-pricing/internal/models"
	"ms-pricing/internal/passes"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIssueAndDecodePass(t *testing.T) {
	gen := passes.NewGenerator("test-secret")

	conf := models.PriceConfirmation{
		ID:    uuid.New().String(),
		Total: 1600,
		Lines: []models.ConfirmationLine{
			{TicketTypeID: "t1", Quantity: 2, UnitPrice: 800},
		},
		ConfirmedAt: time.Now().UTC(),
	}

	png, err := gen.IssuePass(conf)
	assert.NoError(t, err)
	assert.NotEmpty(t, png)

	payload, err := gen.EncodePayload(conf)
	assert.NoError(t, err)

	decoded, err := gen.DecodePayload(payload)
	assert.NoError(t, err)
	assert.Equal(t, conf.ID, decoded.ID)
	assert.Equal(t, conf.Total, decoded.Total)
	assert.Len(t, decoded.Lines, 1)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	gen := passes.NewGenerator("secret-a")
	other := passes.NewGenerator("secret-b")

	payload, err := gen.EncodePayload(models.PriceConfirmation{ID: "c1", Total: 100})
	assert.NoError(t, err)

	_, err = other.DecodePayload(payload)
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	gen := passes.NewGenerator("test-secret")

	_, err := gen.DecodePayload("not base64 at all!!!")
	assert.Error(t, err)

	_, err = gen.DecodePayload("QUJD") // valid base64, too short for an IV
	assert.Error(t, err)
}
