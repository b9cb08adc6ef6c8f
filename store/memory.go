package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"farm-market/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryIdentities is an in-memory identity backend. It is used when the
// API runs with STORE_DRIVER=memory and by tests.
type MemoryIdentities struct {
	mu   sync.RWMutex
	role models.Role
	docs map[primitive.ObjectID]models.Identity
}

// NewMemoryIdentities returns an empty backend for role.
func NewMemoryIdentities(role models.Role) *MemoryIdentities {
	return &MemoryIdentities{role: role, docs: make(map[primitive.ObjectID]models.Identity)}
}

func (m *MemoryIdentities) Role() models.Role { return m.role }

func (m *MemoryIdentities) FindByID(_ context.Context, id primitive.ObjectID) (*models.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (m *MemoryIdentities) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	return m.first(func(doc models.Identity) bool {
		return doc.Email != "" && strings.EqualFold(doc.Email, email)
	})
}

func (m *MemoryIdentities) FindByPhone(_ context.Context, phone string) (*models.Identity, error) {
	return m.first(func(doc models.Identity) bool {
		return doc.PhoneNumber != "" && doc.PhoneNumber == phone
	})
}

// first returns the oldest matching identity so results are stable.
func (m *MemoryIdentities) first(match func(models.Identity) bool) (*models.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *models.Identity
	for _, doc := range m.docs {
		if !match(doc) {
			continue
		}
		if found == nil || doc.ID.Timestamp().Before(found.ID.Timestamp()) {
			d := doc
			found = &d
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *MemoryIdentities) ExistsByCredentials(_ context.Context, email, phone string, exclude primitive.ObjectID) (bool, error) {
	if email == "" && phone == "" {
		return false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, doc := range m.docs {
		if !exclude.IsZero() && id == exclude {
			continue
		}
		if email != "" && strings.EqualFold(doc.Email, email) {
			return true, nil
		}
		if phone != "" && doc.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryIdentities) Insert(_ context.Context, identity *models.Identity) error {
	if identity.ID.IsZero() {
		identity.ID = primitive.NewObjectID()
	}
	identity.Role = m.role
	identity.IsFarmer = m.role == models.RoleFarmer
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[identity.ID] = *identity
	return nil
}

func (m *MemoryIdentities) Update(_ context.Context, identity *models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[identity.ID]; !ok {
		return ErrNotFound
	}
	identity.Role = m.role
	identity.IsFarmer = m.role == models.RoleFarmer
	m.docs[identity.ID] = *identity
	return nil
}

// Delete removes an identity. The API never deletes identities; tests use it
// to model an account removed out of band.
func (m *MemoryIdentities) Delete(id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
}

// MemoryCarts is an in-memory cart store.
type MemoryCarts struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]models.Cart
}

func NewMemoryCarts() *MemoryCarts {
	return &MemoryCarts{carts: make(map[primitive.ObjectID]models.Cart)}
}

func (m *MemoryCarts) FindByBuyer(_ context.Context, buyerID primitive.ObjectID) (*models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cart, ok := m.carts[buyerID]
	if !ok {
		return nil, ErrNotFound
	}
	cart.Items = append([]models.CartItem{}, cart.Items...)
	return &cart, nil
}

func (m *MemoryCarts) Save(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.carts[cart.BuyerID]; ok {
		cart.ID = existing.ID
	} else if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	cart.UpdatedAt = time.Now().UTC()
	stored := *cart
	stored.Items = append([]models.CartItem{}, cart.Items...)
	m.carts[cart.BuyerID] = stored
	return nil
}

// MemoryProducts is an in-memory product store.
type MemoryProducts struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
}

func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{products: make(map[primitive.ObjectID]models.Product)}
}

func (m *MemoryProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	product, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (m *MemoryProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := []models.Product{}
	for _, id := range ids {
		if product, ok := m.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (m *MemoryProducts) List(_ context.Context) ([]models.Product, error) {
	return m.filter(func(models.Product) bool { return true }), nil
}

func (m *MemoryProducts) ListByFarmer(_ context.Context, farmerID primitive.ObjectID) ([]models.Product, error) {
	return m.filter(func(p models.Product) bool { return p.Farmer == farmerID }), nil
}

// filter returns matches newest first, like the Mongo store.
func (m *MemoryProducts) filter(match func(models.Product) bool) []models.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := []models.Product{}
	for _, product := range m.products {
		if match(product) {
			products = append(products, product)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products
}

func (m *MemoryProducts) Insert(_ context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
	return nil
}

func (m *MemoryProducts) DeleteOwned(_ context.Context, id, farmerID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok || product.Farmer != farmerID {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

var (
	_ IdentityBackend = (*MemoryIdentities)(nil)
	_ IdentityBackend = (*MongoIdentities)(nil)
	_ CartStore       = (*MemoryCarts)(nil)
	_ CartStore       = (*MongoCarts)(nil)
	_ ProductStore    = (*MemoryProducts)(nil)
	_ ProductStore    = (*MongoProducts)(nil)
)
