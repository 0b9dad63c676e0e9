package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

// UserStore handles the users table.
type UserStore struct {
	db bun.IDB
}

func NewUserStore(db bun.IDB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user for the session. A duplicate session id
// maps to contract.ErrDuplicateSession instead of a raw driver fault.
func (s *UserStore) Create(ctx context.Context, sessionID, name, address, paymentMethod string) (*User, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", contractx.ErrValidation)
	}

	user := &User{
		SessionID:     sessionID,
		Name:          name,
		Address:       address,
		PaymentMethod: paymentMethod,
	}
	if _, err := s.db.NewInsert().Model(user).Returning("id, created_at").Exec(ctx); err != nil {
		if isIntegrityViolation(err) {
			log.Debug().Str("session_id", sessionID).Msg("duplicate user create attempt")
			return nil, fmt.Errorf("%w: session=%s", contractx.ErrDuplicateSession, sessionID)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// BySession returns the user for a session id, or contract.ErrNotFound.
func (s *UserStore) BySession(ctx context.Context, sessionID string) (*User, error) {
	user := new(User)
	err := s.db.NewSelect().Model(user).Where("session_id = ?", sessionID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: session=%s", contractx.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("select user by session: %w", err)
	}
	return user, nil
}

// Update applies a partial profile update. Only non-empty patch fields
// overwrite. Returns false when the patch is empty or no row matched.
func (s *UserStore) Update(ctx context.Context, id int64, patch UserPatch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}

	q := s.db.NewUpdate().Model((*User)(nil)).Where("id = ?", id)
	if patch.Name != "" {
		q = q.Set("name = ?", patch.Name)
	}
	if patch.Address != "" {
		q = q.Set("address = ?", patch.Address)
	}
	if patch.PaymentMethod != "" {
		q = q.Set("payment_method = ?", patch.PaymentMethod)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update user id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update user id=%d: %w", id, err)
	}
	return affected > 0, nil
}

// OrderStore handles the orders table.
type OrderStore struct {
	db bun.IDB
}

func NewOrderStore(db bun.IDB) *OrderStore {
	return &OrderStore{db: db}
}

// Create inserts an order for an existing user. Total is computed here
// and never touched again. Quantity must be positive.
func (s *OrderStore) Create(ctx context.Context, userID int64, productID, productName string, quantity int, pricePerItem float64, status OrderStatus) (*Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", contractx.ErrValidation, quantity)
	}
	if pricePerItem < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", contractx.ErrValidation)
	}

	exists, err := s.db.NewSelect().Model((*User)(nil)).Where("id = ?", userID).Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check order owner: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: user id=%d", contractx.ErrNotFound, userID)
	}

	if status == "" {
		status = OrderPending
	}
	order := &Order{
		UserID:       userID,
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		PricePerItem: pricePerItem,
		TotalAmount:  float64(quantity) * pricePerItem,
		Status:       status,
	}
	if _, err := s.db.NewInsert().Model(order).Returning("id, order_date").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

// ByID returns one order or contract.ErrNotFound.
func (s *OrderStore) ByID(ctx context.Context, id int64) (*Order, error) {
	order := new(Order)
	err := s.db.NewSelect().Model(order).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order id=%d", contractx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("select order id=%d: %w", id, err)
	}
	return order, nil
}

// ByUser lists a user's orders, newest first.
func (s *OrderStore) ByUser(ctx context.Context, userID int64) ([]Order, error) {
	var orders []Order
	err := s.db.NewSelect().Model(&orders).
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select orders for user id=%d: %w", userID, err)
	}
	return orders, nil
}

// UpdateStatus moves an order to a new status. Returns false when the
// order does not exist.
func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, status OrderStatus) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Order)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update order status id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order status id=%d: %w", id, err)
	}
	return affected > 0, nil
}

// ReturnStore handles the returns table.
type ReturnStore struct {
	db bun.IDB
}

func NewReturnStore(db bun.IDB) *ReturnStore {
	return &ReturnStore{db: db}
}

// Create inserts a return request against an existing order.
func (s *ReturnStore) Create(ctx context.Context, orderID int64, reason string) (*Return, error) {
	exists, err := s.db.NewSelect().Model((*Order)(nil)).Where("id = ?", orderID).Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check parent order: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: order id=%d", contractx.ErrNotFound, orderID)
	}

	ret := &Return{
		OrderID: orderID,
		Reason:  reason,
		Status:  ReturnRequested,
	}
	if _, err := s.db.NewInsert().Model(ret).Returning("id, return_date").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert return: %w", err)
	}
	return ret, nil
}

// ByOrder lists return requests for an order, newest first.
func (s *ReturnStore) ByOrder(ctx context.Context, orderID int64) ([]Return, error) {
	var returns []Return
	err := s.db.NewSelect().Model(&returns).
		Where("order_id = ?", orderID).
		Order("return_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select returns for order id=%d: %w", orderID, err)
	}
	return returns, nil
}

// UpdateStatus moves a return to a new status. The parent order is
// deliberately left untouched; the dialogue core treats
// return_requested as terminal on the order side.
func (s *ReturnStore) UpdateStatus(ctx context.Context, id int64, status ReturnStatus) (bool, error) {
	res, err := s.db.NewUpdate().Model((*Return)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update return status id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update return status id=%d: %w", id, err)
	}
	return affected > 0, nil
}

// isIntegrityViolation matches driver errors that report a constraint
// violation, pgdriver.Error among them.
func isIntegrityViolation(err error) bool {
	var violation interface{ IntegrityViolation() bool }
	if errors.As(err, &violation) {
		return violation.IntegrityViolation()
	}
	return false
}
