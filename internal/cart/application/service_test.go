package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mousegear/store/internal/cart/application"
	"github.com/mousegear/store/internal/cart/domain"
	catalogdomain "github.com/mousegear/store/internal/catalog/domain"
)

// memCarts keeps raw items per user and resolves them against the product map
// the same way the postgres repository joins live products.
type memCarts struct {
	items    map[string][]domain.Item
	products map[string]catalogdomain.Product
}

func newMemCarts() *memCarts {
	return &memCarts{
		items:    map[string][]domain.Item{},
		products: map[string]catalogdomain.Product{},
	}
}

func (m *memCarts) FindByID(_ context.Context, id string) (catalogdomain.Product, error) {
	p, ok := m.products[id]
	if !ok || p.Deleted() {
		return catalogdomain.Product{}, catalogdomain.ErrNotFound
	}
	return p, nil
}

func (m *memCarts) Items(_ context.Context, userID string) ([]domain.Item, error) {
	return m.items[userID], nil
}

func (m *memCarts) UpsertItem(_ context.Context, userID, productID string, delta int) error {
	for i, it := range m.items[userID] {
		if it.ProductID == productID {
			m.items[userID][i].Quantity += delta
			return nil
		}
	}
	m.items[userID] = append(m.items[userID], domain.Item{ProductID: productID, Quantity: delta})
	return nil
}

func (m *memCarts) SetQuantity(_ context.Context, userID, productID string, qty int) error {
	for i, it := range m.items[userID] {
		if it.ProductID == productID {
			m.items[userID][i].Quantity = qty
			return nil
		}
	}
	return domain.ErrItemNotFound
}

func (m *memCarts) RemoveItem(_ context.Context, userID, productID string) error {
	items := m.items[userID]
	for i, it := range items {
		if it.ProductID == productID {
			m.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memCarts) Resolve(_ context.Context, userID string) ([]domain.Line, error) {
	var lines []domain.Line
	for _, it := range m.items[userID] {
		p, ok := m.products[it.ProductID]
		if !ok || p.Deleted() {
			continue
		}
		lines = append(lines, domain.Line{
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			ImgURL:    p.ImgURL,
			Quantity:  it.Quantity,
			Stock:     p.Quantity,
		})
	}
	return lines, nil
}

func (m *memCarts) Clear(_ context.Context, userID string) error {
	delete(m.items, userID)
	return nil
}

func newCartService(repo *memCarts) *application.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return application.NewService(log, repo, repo)
}

func seedProduct(m *memCarts, id, name string, price int64, stock int) {
	m.products[id] = catalogdomain.Product{ID: id, Name: name, Price: price, Quantity: stock}
}

func TestCartGetWithoutCart(t *testing.T) {
	svc := newCartService(newMemCarts())
	lines, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotNil(t, lines, "an absent cart reads as an empty list")
}

func TestCartAddItem(t *testing.T) {
	repo := newMemCarts()
	seedProduct(repo, "mouse-1", "GX Mouse", 2_500, 10)
	svc := newCartService(repo)

	lines, err := svc.AddItem(context.Background(), "alice", "mouse-1", 2)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "GX Mouse", lines[0].Name)
	assert.Equal(t, 2, lines[0].Quantity)

	// Adding again accumulates the quantity on the same line.
	lines, err = svc.AddItem(context.Background(), "alice", "mouse-1", 3)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestCartAddUnknownProduct(t *testing.T) {
	svc := newCartService(newMemCarts())
	_, err := svc.AddItem(context.Background(), "alice", "nope", 1)
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
}

func TestCartAddInvalidQuantity(t *testing.T) {
	repo := newMemCarts()
	seedProduct(repo, "mouse-1", "GX Mouse", 2_500, 10)
	svc := newCartService(repo)

	_, err := svc.AddItem(context.Background(), "alice", "mouse-1", 0)
	assert.ErrorIs(t, err, application.ErrInvalidQuantity)
	_, err = svc.AddItem(context.Background(), "alice", "mouse-1", -2)
	assert.ErrorIs(t, err, application.ErrInvalidQuantity)
}

func TestCartUpdateItemBoundedByStock(t *testing.T) {
	repo := newMemCarts()
	seedProduct(repo, "mouse-1", "GX Mouse", 2_500, 4)
	svc := newCartService(repo)
	_, err := svc.AddItem(context.Background(), "alice", "mouse-1", 1)
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), "alice", "mouse-1", 5)
	assert.ErrorIs(t, err, application.ErrExceedsStock)

	lines, err := svc.UpdateItem(context.Background(), "alice", "mouse-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestCartRemoveItemIdempotent(t *testing.T) {
	repo := newMemCarts()
	seedProduct(repo, "mouse-1", "GX Mouse", 2_500, 10)
	svc := newCartService(repo)
	_, err := svc.AddItem(context.Background(), "alice", "mouse-1", 1)
	require.NoError(t, err)

	lines, err := svc.RemoveItem(context.Background(), "alice", "mouse-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Removing again is not an error.
	lines, err = svc.RemoveItem(context.Background(), "alice", "mouse-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartResolveDropsDeletedProducts(t *testing.T) {
	repo := newMemCarts()
	seedProduct(repo, "mouse-1", "GX Mouse", 2_500, 10)
	seedProduct(repo, "pad-1", "Glass Pad", 1_200, 3)
	svc := newCartService(repo)
	_, err := svc.AddItem(context.Background(), "alice", "mouse-1", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "alice", "pad-1", 1)
	require.NoError(t, err)

	p := repo.products["pad-1"]
	now := time.Now()
	p.DeletedAt = &now
	repo.products["pad-1"] = p

	lines, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "mouse-1", lines[0].ProductID)
}
