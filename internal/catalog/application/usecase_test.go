package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"go-shop/internal/catalog/domain"
	"go-shop/pkg/clock"
	"go-shop/pkg/errors"
	"go-shop/pkg/logger"
)

// MockProductRepository is a map-backed ProductRepository
type MockProductRepository struct {
	products map[uint]domain.Product
	nextID   uint
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]domain.Product),
		nextID:   1,
	}
}

func (m *MockProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	snap := product.Snapshot()
	snap.ID = m.nextID
	m.nextID++
	created, err := domain.RestoreProduct(snap)
	if err != nil {
		return domain.Product{}, err
	}
	m.products[created.ID()] = created
	return created, nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.NewProductNotFound(id)
	}
	return p, nil
}

func (m *MockProductRepository) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	for _, p := range m.products {
		if p.SKU() == sku {
			return p, nil
		}
	}
	return domain.Product{}, domain.NewProductNotFoundBySKU(sku)
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	ids := make([]int, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var out []domain.Product
	for i, id := range ids {
		if i < offset || len(out) == limit {
			continue
		}
		out = append(out, m.products[uint(id)])
	}
	return out, nil
}

func (m *MockProductRepository) GetByIDForUpdate(ctx context.Context, id uint) (domain.Product, error) {
	return m.GetByID(ctx, id)
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) error {
	m.products[product.ID()] = product
	return nil
}

func (m *MockProductRepository) Adjust(ctx context.Context, id uint, fn func(domain.Product) (domain.Product, error)) (domain.Product, error) {
	p, err := m.GetByIDForUpdate(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	updated, err := fn(p)
	if err != nil {
		return domain.Product{}, err
	}
	return updated, m.Save(ctx, updated)
}

// MockEventPublisher records restock events
type MockEventPublisher struct {
	restocked []int
}

func (m *MockEventPublisher) PublishStockReplenished(ctx context.Context, product domain.Product, added int) error {
	m.restocked = append(m.restocked, added)
	return nil
}

func newTestUseCase() (*ProductUseCase, *MockProductRepository, *MockEventPublisher) {
	repo := NewMockProductRepository()
	publisher := &MockEventPublisher{}
	clk := clock.NewFixed(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewProductUseCase(repo, publisher, clk, logger.NewNop()), repo, publisher
}

func widgetInput() RegisterProductInput {
	return RegisterProductInput{
		SKU:   "WID-1",
		Name:  "Widget",
		Price: decimal.RequireFromString("19.99"),
		Stock: 5,
	}
}

func TestRegisterProduct_Success(t *testing.T) {
	// Arrange
	useCase, _, _ := newTestUseCase()

	// Act
	product, err := useCase.RegisterProduct(context.Background(), widgetInput())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if product.ID() != 1 {
		t.Errorf("expected ID 1, got %d", product.ID())
	}
	if !product.Price().Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("expected price 19.99, got %s", product.Price())
	}
}

func TestRegisterProduct_InvalidPrice(t *testing.T) {
	// Arrange
	useCase, _, _ := newTestUseCase()
	input := widgetInput()
	input.Price = decimal.Zero

	// Act
	_, err := useCase.RegisterProduct(context.Background(), input)

	// Assert
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRegisterProduct_DuplicateSKU(t *testing.T) {
	// Arrange
	useCase, _, _ := newTestUseCase()
	_, _ = useCase.RegisterProduct(context.Background(), widgetInput())

	// Act
	_, err := useCase.RegisterProduct(context.Background(), widgetInput())

	// Assert
	if !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	// Arrange
	useCase, _, _ := newTestUseCase()

	// Act
	_, err := useCase.GetProduct(context.Background(), 42)

	// Assert
	if !errors.HasReason(err, domain.ReasonProductNotFound) {
		t.Errorf("expected product not found, got %v", err)
	}
}

func TestListProducts_Paging(t *testing.T) {
	// Arrange
	useCase, _, _ := newTestUseCase()
	for _, sku := range []string{"A", "B", "C"} {
		input := widgetInput()
		input.SKU = sku
		if _, err := useCase.RegisterProduct(context.Background(), input); err != nil {
			t.Fatalf("register %s: %v", sku, err)
		}
	}

	// Act
	page, err := useCase.ListProducts(context.Background(), 2, 1)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page) != 2 || page[0].SKU() != "B" || page[1].SKU() != "C" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestRestockProduct_Success(t *testing.T) {
	// Arrange
	useCase, repo, publisher := newTestUseCase()
	created, _ := useCase.RegisterProduct(context.Background(), widgetInput())

	// Act
	product, err := useCase.RestockProduct(context.Background(), created.ID(), 10)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if product.Stock() != 15 {
		t.Errorf("expected stock 15, got %d", product.Stock())
	}
	if stored := repo.products[created.ID()]; stored.Stock() != 15 {
		t.Errorf("expected stored stock 15, got %d", stored.Stock())
	}
	if len(publisher.restocked) != 1 || publisher.restocked[0] != 10 {
		t.Errorf("expected one restock event of 10, got %v", publisher.restocked)
	}
}

func TestRestockProduct_InvalidQuantity(t *testing.T) {
	// Arrange
	useCase, _, publisher := newTestUseCase()
	created, _ := useCase.RegisterProduct(context.Background(), widgetInput())

	// Act
	_, err := useCase.RestockProduct(context.Background(), created.ID(), 0)

	// Assert
	if !errors.HasReason(err, domain.ReasonInvalidQuantity) {
		t.Errorf("expected invalid quantity, got %v", err)
	}
	if len(publisher.restocked) != 0 {
		t.Errorf("expected no events, got %d", len(publisher.restocked))
	}
}

func TestRestockProduct_NotFound(t *testing.T) {
	// Arrange
	useCase, _, _ := newTestUseCase()

	// Act
	_, err := useCase.RestockProduct(context.Background(), 7, 1)

	// Assert
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}
