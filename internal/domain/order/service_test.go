package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
	"github.com/your-org/marketflow-backend/internal/pkg/logger"
)

var fixedNow = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

func newTestService() *Service {
	svc := NewService(NewMemoryRepository(), logger.Discard())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func newTestOrder(name, email, total string, placed time.Time) *Order {
	return &Order{
		Items: []OrderItem{
			{ProductID: 1, Name: "Mug", UnitPrice: decimal.RequireFromString(total), Quantity: 1, LineTotal: decimal.RequireFromString(total)},
		},
		Subtotal:          decimal.RequireFromString(total),
		Tax:               decimal.Zero,
		Shipping:          decimal.Zero,
		Total:             decimal.RequireFromString(total),
		Status:            StatusPending,
		CustomerName:      name,
		CustomerEmail:     email,
		OrderDate:         placed,
		EstimatedDelivery: placed.Add(initialDeliveryWindow),
	}
}

func TestCreate_IDsNeverReused(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		o, err := svc.Create(ctx, newTestOrder("Ann", "ann@example.com", "10.00", fixedNow))
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	removed, err := svc.Delete(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[1], removed.ID)

	fourth, err := svc.Create(ctx, newTestOrder("Ann", "ann@example.com", "10.00", fixedNow))
	require.NoError(t, err)
	for _, id := range ids {
		assert.Greater(t, fourth.ID, id)
	}

	_, err = svc.GetByID(ctx, ids[1])
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreate_RejectsEmptyOrder(t *testing.T) {
	svc := newTestService()

	o := newTestOrder("Ann", "ann@example.com", "10.00", fixedNow)
	o.Items = nil
	_, err := svc.Create(context.Background(), o)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
}

func TestUpdateStatus_ShippedRecomputesDelivery(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	placed := fixedNow.Add(-48 * time.Hour)
	o, err := svc.Create(ctx, newTestOrder("Ann", "ann@example.com", "10.00", placed))
	require.NoError(t, err)

	processing, err := svc.UpdateStatus(ctx, o.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, processing.Status)
	assert.True(t, processing.EstimatedDelivery.Equal(placed.Add(initialDeliveryWindow)))

	shipped, err := svc.UpdateStatus(ctx, o.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, shipped.Status)
	assert.True(t, shipped.EstimatedDelivery.Equal(fixedNow.Add(72*time.Hour)))

	delivered, err := svc.UpdateStatus(ctx, o.ID, "delivered")
	require.NoError(t, err)
	assert.True(t, delivered.EstimatedDelivery.Equal(fixedNow.Add(72*time.Hour)))
}

func TestUpdateStatus_UnknownLabelLeavesOrderUnchanged(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	o, err := svc.Create(ctx, newTestOrder("Ann", "ann@example.com", "10.00", fixedNow))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, o.ID, "bogus")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "invalid_status", apperror.CodeOf(err))

	stored, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestUpdateStatus_StateMachine(t *testing.T) {
	tests := []struct {
		path []Status
		next Status
		ok   bool
	}{
		{nil, StatusProcessing, true},
		{nil, StatusCancelled, true},
		{nil, StatusShipped, false},
		{nil, StatusPending, false},
		{[]Status{StatusProcessing}, StatusCancelled, true},
		{[]Status{StatusProcessing, StatusShipped}, StatusCancelled, false},
		{[]Status{StatusProcessing, StatusShipped, StatusDelivered}, StatusPending, false},
		{[]Status{StatusCancelled}, StatusProcessing, false},
	}

	for _, tt := range tests {
		name := string(StatusPending)
		for _, step := range tt.path {
			name += "->" + string(step)
		}
		name += "->" + string(tt.next)

		t.Run(name, func(t *testing.T) {
			svc := newTestService()
			ctx := context.Background()
			o, err := svc.Create(ctx, newTestOrder("Ann", "ann@example.com", "10.00", fixedNow))
			require.NoError(t, err)

			for _, step := range tt.path {
				_, err := svc.UpdateStatus(ctx, o.ID, string(step))
				require.NoError(t, err)
			}
			before, err := svc.GetByID(ctx, o.ID)
			require.NoError(t, err)

			_, err = svc.UpdateStatus(ctx, o.ID, string(tt.next))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, "invalid_transition", apperror.CodeOf(err))
			after, err := svc.GetByID(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, before.Status, after.Status)
		})
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.UpdateStatus(context.Background(), 42, "processing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())

	_, err := ParseStatus(" Shipped ")
	assert.NoError(t, err)
}

func TestGetAll_FiltersAndOrdering(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, newTestOrder("Ann Lee", "ann@example.com", "10.00", fixedNow.AddDate(0, 0, -20)))
	require.NoError(t, err)
	b, err := svc.Create(ctx, newTestOrder("Bob Stone", "bob@shop.test", "20.00", fixedNow.AddDate(0, 0, -5)))
	require.NoError(t, err)
	c, err := svc.Create(ctx, newTestOrder("Cara Lee", "cara@example.com", "30.00", fixedNow.AddDate(0, 0, -1)))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, c.ID, "processing")
	require.NoError(t, err)

	all, err := svc.GetAll(ctx, &OrderListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, c.ID, all[0].ID)

	byStatus, err := svc.GetAll(ctx, &OrderListRequest{Status: "processing"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, c.ID, byStatus[0].ID)

	byCustomer, err := svc.GetAll(ctx, &OrderListRequest{Customer: "LEE"})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	byEmail, err := svc.GetAll(ctx, &OrderListRequest{Customer: "shop.test"})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, b.ID, byEmail[0].ID)

	byDate, err := svc.GetAll(ctx, &OrderListRequest{
		DateFrom: fixedNow.AddDate(0, 0, -6).Format("2006-01-02"),
		DateTo:   fixedNow.AddDate(0, 0, -5).Format("2006-01-02"),
	})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, b.ID, byDate[0].ID)

	_, err = svc.GetAll(ctx, &OrderListRequest{Status: "lost"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = svc.GetAll(ctx, &OrderListRequest{DateFrom: "yesterday"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGetStats(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	empty, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalOrders)
	assert.Equal(t, "0.00", empty.AverageOrderValue)

	_, err = svc.Create(ctx, newTestOrder("Ann", "ann@example.com", "10.00", fixedNow.AddDate(0, 0, -30)))
	require.NoError(t, err)
	b, err := svc.Create(ctx, newTestOrder("Bob", "bob@example.com", "20.50", fixedNow.AddDate(0, 0, -2)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newTestOrder("Cara", "cara@example.com", "30.00", fixedNow))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, b.ID, "cancelled")
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, "60.50", stats.TotalRevenue)
	assert.Equal(t, "20.17", stats.AverageOrderValue)
	assert.Equal(t, 2, stats.RecentOrdersCount)
	assert.Equal(t, 2, stats.StatusCounts[StatusPending])
	assert.Equal(t, 1, stats.StatusCounts[StatusCancelled])
	assert.Equal(t, 0, stats.StatusCounts[StatusShipped])
}

func TestOrder_OrderNumber(t *testing.T) {
	o := &Order{ID: 42, OrderDate: fixedNow}
	assert.Equal(t, "ORD-20240610-00042", o.OrderNumber())
}
