// Package dialogue maps an extracted intent plus session state onto
// deterministic store mutations and one reply string per turn.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
	storex "github.com/tanpawarit/shopmate-assistant/assistant/store"
)

// UserStore is the slice of the persistence layer the agent needs for
// profiles.
type UserStore interface {
	Create(ctx context.Context, sessionID, name, address, paymentMethod string) (*storex.User, error)
	BySession(ctx context.Context, sessionID string) (*storex.User, error)
	Update(ctx context.Context, id int64, patch storex.UserPatch) (bool, error)
}

// OrderStore is the slice of the persistence layer the agent needs for
// orders.
type OrderStore interface {
	Create(ctx context.Context, userID int64, productID, productName string, quantity int, pricePerItem float64, status storex.OrderStatus) (*storex.Order, error)
	ByID(ctx context.Context, id int64) (*storex.Order, error)
	ByUser(ctx context.Context, userID int64) ([]storex.Order, error)
	UpdateStatus(ctx context.Context, id int64, status storex.OrderStatus) (bool, error)
}

// ReturnStore is the slice of the persistence layer the agent needs
// for returns.
type ReturnStore interface {
	Create(ctx context.Context, orderID int64, reason string) (*storex.Return, error)
	ByOrder(ctx context.Context, orderID int64) ([]storex.Return, error)
}

// Agent is the dialogue state machine. It holds no conversational
// memory of its own: every turn re-reads the session's user, orders,
// and returns from the stores.
type Agent struct {
	users   UserStore
	orders  OrderStore
	returns ReturnStore
	source  contractx.IntentSource
	finder  contractx.ProductFinder
}

func New(users UserStore, orders OrderStore, returns ReturnStore, source contractx.IntentSource, finder contractx.ProductFinder) (*Agent, error) {
	if users == nil || orders == nil || returns == nil {
		return nil, errors.New("all three stores are required")
	}
	if source == nil {
		return nil, errors.New("intent source is required")
	}
	if finder == nil {
		return nil, errors.New("product finder is required")
	}
	return &Agent{
		users:   users,
		orders:  orders,
		returns: returns,
		source:  source,
		finder:  finder,
	}, nil
}

// HandleMessage runs one conversational turn. It never returns an
// error: every failure path resolves to a reply string.
func (a *Agent) HandleMessage(ctx context.Context, sessionID, text string) string {
	ex, err := a.source.Extract(ctx, sessionID, text)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("intent extraction degraded")
		ex = contractx.Extraction{Intent: contractx.IntentUnknown}
	}

	user, err := a.users.BySession(ctx, sessionID)
	if err != nil && !errors.Is(err, contractx.ErrNotFound) {
		log.Error().Err(err).Str("session_id", sessionID).Msg("load user failed")
		return replyStoreTrouble
	}

	log.Debug().
		Str("session_id", sessionID).
		Str("intent", string(ex.Intent)).
		Bool("known_user", user != nil).
		Msg("dispatching intent")

	return a.decide(ctx, sessionID, user, ex)
}

// decide is the per-intent dispatch. Mutations inside each branch are
// applied in order before the reply is produced, so a partial failure
// leaves a well-defined intermediate state.
func (a *Agent) decide(ctx context.Context, sessionID string, user *storex.User, ex contractx.Extraction) string {
	switch ex.Intent {
	case contractx.IntentGreet:
		return replyGreeting
	case contractx.IntentSearchProduct:
		return a.searchProduct(ctx, ex.Entities)
	case contractx.IntentProvideInfo:
		return a.provideInfo(ctx, sessionID, user, ex.Entities)
	case contractx.IntentAddToCart:
		return a.placeOrder(ctx, user, ex.Entities, false)
	case contractx.IntentCheckout:
		return a.placeOrder(ctx, user, ex.Entities, true)
	case contractx.IntentViewOrders:
		return a.viewOrders(ctx, user)
	case contractx.IntentRequestReturn:
		return a.requestReturn(ctx, user, ex.Entities)
	default:
		return replyRephrase
	}
}

func (a *Agent) searchProduct(ctx context.Context, ent contractx.Entities) string {
	if ent.ProductName == "" {
		return replyAskProductName
	}

	product, err := a.finder.Find(ctx, ent.ProductName)
	if err != nil {
		return fmt.Sprintf("Sorry, I couldn't find %q in the catalog.", ent.ProductName)
	}
	return fmt.Sprintf("%s — $%.2f. %s", product.Title, product.Price, truncate(product.Description, 100))
}

func (a *Agent) provideInfo(ctx context.Context, sessionID string, user *storex.User, ent contractx.Entities) string {
	if user == nil {
		missing := missingProfileFields(ent)
		if len(missing) > 0 {
			return fmt.Sprintf("I still need your %s to set up your profile.", strings.Join(missing, ", "))
		}

		created, err := a.users.Create(ctx, sessionID, ent.Name, ent.Address, ent.PaymentMethod)
		if err != nil {
			if errors.Is(err, contractx.ErrDuplicateSession) {
				// Raced with an earlier turn; the profile already exists.
				return replyProfileExists
			}
			log.Error().Err(err).Str("session_id", sessionID).Msg("create user failed")
			return replyStoreTrouble
		}
		return fmt.Sprintf("Thanks, %s! Your profile is saved and you're ready to shop.", created.Name)
	}

	patch := storex.UserPatch{
		Name:          ent.Name,
		Address:       ent.Address,
		PaymentMethod: ent.PaymentMethod,
	}
	if patch.Empty() {
		return replyAskProfileUpdate
	}
	ok, err := a.users.Update(ctx, user.ID, patch)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("update user failed")
		return replyStoreTrouble
	}
	if !ok {
		log.Warn().Int64("user_id", user.ID).Msg("profile update matched no row")
		return replyProfileGone
	}
	return replyProfileUpdated
}

func (a *Agent) placeOrder(ctx context.Context, user *storex.User, ent contractx.Entities, checkout bool) string {
	if user == nil {
		return replyNeedProfile
	}
	if ent.ProductName == "" {
		return replyAskProductName
	}
	quantity := ent.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product, err := a.finder.Find(ctx, ent.ProductName)
	if err != nil {
		return fmt.Sprintf("I couldn't find %q, so nothing was ordered.", ent.ProductName)
	}

	order, err := a.orders.Create(ctx, user.ID, product.ID, product.Title, quantity, product.Price, storex.OrderPending)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("create order failed")
		return replyStoreTrouble
	}

	if !checkout {
		return fmt.Sprintf("Added %d x %s to your cart. Order #%d is pending (total $%.2f).",
			quantity, product.Title, order.ID, order.TotalAmount)
	}

	// Two-step on purpose: a failed shipped-transition must leave the
	// order row intact in pending.
	ok, err := a.orders.UpdateStatus(ctx, order.ID, storex.OrderShipped)
	if err != nil || !ok {
		log.Error().Err(err).Int64("order_id", order.ID).Msg("shipped transition failed")
		return fmt.Sprintf("Order #%d was placed (total $%.2f) but couldn't be moved to shipping yet.",
			order.ID, order.TotalAmount)
	}
	return fmt.Sprintf("Order #%d placed and shipped! %d x %s, total $%.2f.",
		order.ID, quantity, product.Title, order.TotalAmount)
}

func (a *Agent) viewOrders(ctx context.Context, user *storex.User) string {
	if user == nil {
		return replyNeedProfile
	}

	orders, err := a.orders.ByUser(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("list orders failed")
		return replyStoreTrouble
	}
	if len(orders) == 0 {
		return replyNoOrders
	}

	var b strings.Builder
	b.WriteString("Your orders:\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "#%d: %s x%d — $%.2f (%s)\n", o.ID, o.ProductName, o.Quantity, o.TotalAmount, o.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Agent) requestReturn(ctx context.Context, user *storex.User, ent contractx.Entities) string {
	if user == nil {
		return replyNeedProfile
	}
	if ent.OrderID <= 0 {
		return replyAskOrderID
	}
	if ent.Reason == "" {
		return replyAskReturnReason
	}

	order, err := a.orders.ByID(ctx, ent.OrderID)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return fmt.Sprintf("I couldn't find order #%d.", ent.OrderID)
		}
		log.Error().Err(err).Int64("order_id", ent.OrderID).Msg("load order failed")
		return replyStoreTrouble
	}
	if order.UserID != user.ID {
		return fmt.Sprintf("Order #%d doesn't belong to your account, so I can't start a return for it.", order.ID)
	}
	if !order.Status.Returnable() {
		return fmt.Sprintf("Order #%d is %s; only shipped or delivered orders can be returned.", order.ID, order.Status)
	}

	// A shipped order can already carry a return when an earlier turn
	// created the row but failed the status flip.
	existing, err := a.returns.ByOrder(ctx, order.ID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", order.ID).Msg("list returns failed")
		return replyStoreTrouble
	}
	if len(existing) > 0 {
		return fmt.Sprintf("A return for order #%d has already been requested (return #%d).", order.ID, existing[0].ID)
	}

	ret, err := a.returns.Create(ctx, order.ID, ent.Reason)
	if err != nil {
		log.Error().Err(err).Int64("order_id", order.ID).Msg("create return failed")
		return replyStoreTrouble
	}
	if _, err := a.orders.UpdateStatus(ctx, order.ID, storex.OrderReturnRequested); err != nil {
		// The return row exists; the order will be reconciled on the
		// next attempt via the duplicate guard above.
		log.Error().Err(err).Int64("order_id", order.ID).Msg("return_requested transition failed")
	}
	return fmt.Sprintf("Return #%d created for order #%d. We'll be in touch about next steps.", ret.ID, order.ID)
}

func missingProfileFields(ent contractx.Entities) []string {
	var missing []string
	if ent.Name == "" {
		missing = append(missing, "name")
	}
	if ent.Address == "" {
		missing = append(missing, "address")
	}
	if ent.PaymentMethod == "" {
		missing = append(missing, "payment method")
	}
	return missing
}

// truncate shortens s to at most max characters, counting runes so a
// multi-byte description is never cut mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
