// internal/devserver/store.go
package devserver

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"chronoshop/internal/domain/shop"
	"chronoshop/internal/domain/user"
	xerrors "chronoshop/internal/pkg/errors"
)

// memStore is the in-memory persistence behind the mock backend. Everything
// is lost on restart, which is the point of a dev server.
type memStore struct {
	mu sync.RWMutex

	users       map[string]*userRecord // by id
	usersByMail map[string]string      // email -> id
	products    map[string]*shop.Product
	orders      map[string][]shop.Order // by user id
	refresh     map[string]string       // refresh jti -> user id
	revoked     map[string]bool         // access jti -> revoked
}

type userRecord struct {
	user.User
	PasswordHash []byte
}

func newMemStore() *memStore {
	s := &memStore{
		users:       make(map[string]*userRecord),
		usersByMail: make(map[string]string),
		products:    make(map[string]*shop.Product),
		orders:      make(map[string][]shop.Order),
		refresh:     make(map[string]string),
		revoked:     make(map[string]bool),
	}
	s.seedProducts()
	return s
}

// seedProducts loads a small watch catalog so the CLI has something to sell.
func (s *memStore) seedProducts() {
	seed := []shop.Product{
		{Name: "Presage Cocktail Time", Brand: "Seiko", Price: 425, Stock: 12},
		{Name: "Khaki Field Mechanical", Brand: "Hamilton", Price: 545, Stock: 8},
		{Name: "Tangente 38", Brand: "Nomos", Price: 1890, Stock: 3},
		{Name: "Black Bay 58", Brand: "Tudor", Price: 3800, Stock: 2},
		{Name: "Speedmaster Professional", Brand: "Omega", Price: 7600, Stock: 1},
		{Name: "G-SHOCK DW-5600", Brand: "Casio", Price: 99, Stock: 40},
	}
	for _, p := range seed {
		p.ID = ulid.Make().String()
		cp := p
		s.products[p.ID] = &cp
	}
}

// ---- users ----

func (s *memStore) createUser(email, fullName string, passwordHash []byte) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByMail[email]; exists {
		return nil, xerrors.ErrInvalidInput
	}

	now := time.Now()
	rec := &userRecord{
		User: user.User{
			ID:        ulid.Make().String(),
			Email:     email,
			FullName:  fullName,
			Role:      "user",
			Cart:      []shop.CartLine{},
			Wishlist:  []shop.WishlistEntry{},
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: passwordHash,
	}
	s.users[rec.ID] = rec
	s.usersByMail[email] = rec.ID

	u := rec.User
	return &u, nil
}

func (s *memStore) userByEmail(email string) (*userRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByMail[email]
	if !ok {
		return nil, false
	}
	rec := *s.users[id]
	return &rec, true
}

func (s *memStore) userByID(id string) (*user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, false
	}
	u := rec.User
	return &u, true
}

// updateUser applies a partial update; non-nil collections replace the
// stored value wholesale. Cart writes are re-checked against current stock
// so a stale client can never commit an over-stock cart.
func (s *memStore) updateUser(id string, req user.UpdateUserRequest) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}

	if req.Cart != nil {
		for _, line := range *req.Cart {
			if line.Quantity < 1 {
				return nil, xerrors.ErrInvalidInput
			}
			p, exists := s.products[line.ProductID]
			if !exists {
				return nil, xerrors.ErrNotFound
			}
			if line.Quantity > p.Stock {
				return nil, xerrors.ErrStockExceeded
			}
		}
		rec.Cart = append([]shop.CartLine{}, *req.Cart...)
	}
	if req.Wishlist != nil {
		rec.Wishlist = append([]shop.WishlistEntry{}, *req.Wishlist...)
	}
	if req.FullName != nil && *req.FullName != "" {
		rec.FullName = *req.FullName
	}
	rec.UpdatedAt = time.Now()

	u := rec.User
	return &u, nil
}

// ---- products ----

func (s *memStore) listProducts() []shop.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]shop.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out
}

func (s *memStore) product(id string) (*shop.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// ---- orders ----

// placeOrder converts the user's cart into an order, decrements stock and
// clears the cart. Fails if any line no longer fits current stock.
func (s *memStore) placeOrder(userID string) (*shop.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	if len(rec.Cart) == 0 {
		return nil, xerrors.ErrInvalidInput
	}

	for _, line := range rec.Cart {
		p, exists := s.products[line.ProductID]
		if !exists || line.Quantity > p.Stock {
			return nil, xerrors.ErrStockExceeded
		}
	}
	for _, line := range rec.Cart {
		s.products[line.ProductID].Stock -= line.Quantity
	}

	now := time.Now()
	order := shop.Order{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Lines:     append([]shop.CartLine{}, rec.Cart...),
		Total:     shop.Subtotal(rec.Cart),
		Status:    shop.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.orders[userID] = append([]shop.Order{order}, s.orders[userID]...)

	rec.Cart = []shop.CartLine{}
	rec.UpdatedAt = now
	return &order, nil
}

func (s *memStore) listOrders(userID string) []shop.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shop.Order{}, s.orders[userID]...)
}

func (s *memStore) order(userID, orderID string) (*shop.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders[userID] {
		if o.ID == orderID {
			cp := o
			return &cp, true
		}
	}
	return nil, false
}

// ---- tokens ----

func (s *memStore) storeRefresh(jti, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[jti] = userID
}

func (s *memStore) refreshOwner(jti string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.refresh[jti]
	return id, ok
}

func (s *memStore) dropUserRefresh(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, owner := range s.refresh {
		if owner == userID {
			delete(s.refresh, jti)
		}
	}
}

func (s *memStore) revokeAccess(jti string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
}

func (s *memStore) accessRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revoked[jti]
}
