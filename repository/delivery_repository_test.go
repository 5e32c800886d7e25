package repositories_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/models"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
)

func TestClaim_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	deliveryID := uuid.New()
	driverID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`WITH claimed AS`)).
		WithArgs(driverID, deliveryID,
			models.OrderStatusPending, models.OrderStatusConfirmed,
			models.OrderStatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Claim(context.Background(), deliveryID, driverID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_LostRace(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	deliveryID := uuid.New()
	otherDriver := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`WITH claimed AS`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// the delivery exists but is already taken
	rows := sqlmock.NewRows([]string{"id", "order_id", "driver_id", "address", "created_at", "updated_at"}).
		AddRow(deliveryID, uuid.New(), otherDriver, "12 Galle Road", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "deliveries"`)).
		WillReturnRows(rows)

	err := repo.Claim(context.Background(), deliveryID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)
}

func TestClaim_UnknownDelivery(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta(`WITH claimed AS`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "deliveries"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := repo.Claim(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateOrderStatus_ReportsAffectedRows(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	deliveryID := uuid.New()
	driverID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.UpdateOrderStatus(context.Background(), deliveryID, driverID,
		models.OrderStatusShipped, []string{models.OrderStatusConfirmed})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestUpdateOrderStatus_GuardMiss(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdateOrderStatus(context.Background(), uuid.New(), uuid.New(),
		models.OrderStatusDelivered, []string{models.OrderStatusShipped})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestSettlePayment_ReportsAffectedRows(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	deliveryID := uuid.New()
	driverID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments`)).
		WithArgs(models.PaymentStatusPaid, deliveryID, driverID,
			models.OrderStatusDelivered, models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.SettlePayment(context.Background(), deliveryID, driverID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestSettlePayment_GuardMiss(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.SettlePayment(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestFindSnapshot_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormDeliveryRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT d.id AS delivery_id`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	snap, err := repo.FindSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, snap)
}
