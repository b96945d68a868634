package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"campuseats/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type OrderRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      OrderRepository
	studentID uuid.UUID
	canteenID uuid.UUID
	context   context.Context
}

func (suite *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRepo(mock)
	suite.studentID = uuid.New()
	suite.canteenID = uuid.New()
	suite.context = context.Background()
}

func (suite *OrderRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func (suite *OrderRepoTestSuite) newOrder() *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		StudentID:   suite.studentID,
		CanteenID:   suite.canteenID,
		TotalAmount: 130,
		Status:      models.OrderStatusPending,
		PickupCode:  "4821",
	}
}

func (suite *OrderRepoTestSuite) newItems(order *models.Order, n int) []*models.OrderItem {
	items := make([]*models.OrderItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, &models.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: uuid.New(),
			Quantity:   1,
			Price:      30,
		})
	}
	return items
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_Success() {
	order := suite.newOrder()
	items := suite.newItems(order, 2)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(order.PickupCode, models.OrderStatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.StudentID, order.CanteenID, order.TotalAmount, order.Status, order.PickupCode).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, item := range items {
		suite.mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(item.ID, item.OrderID, item.MenuItemID, item.Quantity, item.Price).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	suite.mock.ExpectCommit()

	err := suite.repo.CreateWithItems(suite.context, order, items)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_PickupCodeTaken() {
	order := suite.newOrder()
	items := suite.newItems(order, 1)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(order.PickupCode, models.OrderStatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, order, items)
	assert.ErrorIs(suite.T(), err, ErrPickupCodeTaken)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_ItemInsertFailureRollsBack() {
	order := suite.newOrder()
	items := suite.newItems(order, 1)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(order.PickupCode, models.OrderStatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.StudentID, order.CanteenID, order.TotalAmount, order.Status, order.PickupCode).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(items[0].ID, items[0].OrderID, items[0].MenuItemID, items[0].Quantity, items[0].Price).
		WillReturnError(errors.New("order_items_menu_item_id_fkey violated"))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, order, items)
	assert.Error(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestGetByIDForCanteen_Found() {
	order := suite.newOrder()
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT id, student_id, canteen_id, total_amount, status, pickup_code, created_at, updated_at`).
		WithArgs(suite.canteenID, order.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "student_id", "canteen_id", "total_amount", "status", "pickup_code", "created_at", "updated_at"}).
			AddRow(order.ID, order.StudentID, order.CanteenID, order.TotalAmount, order.Status, order.PickupCode, now, now))

	got, err := suite.repo.GetByIDForCanteen(suite.context, suite.canteenID, order.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), order.ID, got.ID)
	assert.Equal(suite.T(), order.PickupCode, got.PickupCode)
}

func (suite *OrderRepoTestSuite) TestGetByIDForCanteen_WrongCanteen() {
	orderID := uuid.New()

	suite.mock.ExpectQuery(`SELECT id, student_id, canteen_id, total_amount, status, pickup_code, created_at, updated_at`).
		WithArgs(suite.canteenID, orderID).
		WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.GetByIDForCanteen(suite.context, suite.canteenID, orderID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), got)
}

func (suite *OrderRepoTestSuite) TestUpdateStatus() {
	orderID := uuid.New()

	suite.mock.ExpectExec(`UPDATE orders`).
		WithArgs(models.OrderStatusReady, orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatus(suite.context, orderID, models.OrderStatusReady)
	assert.NoError(suite.T(), err)
}

func (suite *OrderRepoTestSuite) TestListByStudent() {
	now := time.Now()
	first, second := suite.newOrder(), suite.newOrder()

	suite.mock.ExpectQuery(`WHERE student_id = \$1`).
		WithArgs(suite.studentID, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "student_id", "canteen_id", "total_amount", "status", "pickup_code", "created_at", "updated_at"}).
			AddRow(first.ID, first.StudentID, first.CanteenID, first.TotalAmount, first.Status, first.PickupCode, now, now).
			AddRow(second.ID, second.StudentID, second.CanteenID, second.TotalAmount, second.Status, second.PickupCode, now, now))

	orders, err := suite.repo.ListByStudent(suite.context, suite.studentID, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), orders, 2)
	assert.Equal(suite.T(), first.ID, orders[0].ID)
}

func (suite *OrderRepoTestSuite) TestListEmptyHeaders() {
	now := time.Now()
	order := suite.newOrder()
	cutoff := now.Add(-10 * time.Minute)

	suite.mock.ExpectQuery(`NOT EXISTS \(SELECT 1 FROM order_items`).
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"id", "student_id", "canteen_id", "total_amount", "status", "pickup_code", "created_at", "updated_at"}).
			AddRow(order.ID, order.StudentID, order.CanteenID, order.TotalAmount, order.Status, order.PickupCode, now, now))

	orders, err := suite.repo.ListEmptyHeaders(suite.context, cutoff)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), orders, 1)
	assert.Equal(suite.T(), order.ID, orders[0].ID)
}

func (suite *OrderRepoTestSuite) TestDelete() {
	orderID := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM orders`).
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, orderID)
	assert.NoError(suite.T(), err)
}
