package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/stretchr/testify/require"
)

type auditSpy struct {
	mu    sync.Mutex
	lines []string
}

func (a *auditSpy) Append(_ context.Context, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines = append(a.lines, msg)
}

func (a *auditSpy) Lines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.lines...)
}

type notifySpy struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (n *notifySpy) Publish(_ context.Context, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.bodies = append(n.bodies, body)
	return nil
}

// flakyStore fails product replaces: the first failN calls return failErr.
type flakyStore struct {
	record.Store
	failN   int
	failErr error
	calls   int
}

func (s *flakyStore) Replace(ctx context.Context, e record.Entity, mode record.WriteMode) (record.Entity, error) {
	if e.Partition == models.PartitionProducts {
		s.calls++
		if s.calls <= s.failN {
			return record.Entity{}, s.failErr
		}
	}
	return s.Store.Replace(ctx, e, mode)
}

type env struct {
	mem       *record.Memory
	store     record.Store
	products  *repositories.ProductRepository
	orders    *repositories.OrderRepository
	customers *repositories.CustomerRepository
	audit     *auditSpy
	notify    *notifySpy
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithStore(t, nil)
}

// newEnvWithStore wraps the memory store with wrap when non-nil.
func newEnvWithStore(t *testing.T, wrap func(record.Store) record.Store) *env {
	t.Helper()
	mem := record.NewMemory()
	var store record.Store = mem
	if wrap != nil {
		store = wrap(mem)
	}
	return &env{
		mem:       mem,
		store:     store,
		products:  repositories.NewProductRepository(store),
		orders:    repositories.NewOrderRepository(store),
		customers: repositories.NewCustomerRepository(store),
		audit:     &auditSpy{},
		notify:    &notifySpy{},
	}
}

func (e *env) ledger(policy services.WritePolicy) *services.Ledger {
	return services.NewLedger(e.orders, e.products, e.notify, e.audit, policy)
}

func (e *env) seedProduct(t *testing.T, id, name, price string, stock int) models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), models.Product{
		ID:            id,
		Name:          name,
		Price:         dec(price),
		StockQuantity: stock,
		Category:      "Home",
		IsActive:      true,
		CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return p
}

func (e *env) seedOrder(t *testing.T, o models.Order) models.Order {
	t.Helper()
	if o.Status == "" {
		o.Status = models.StatusPending
	}
	stored, err := e.orders.Create(context.Background(), o)
	require.NoError(t, err)
	return stored
}

var errBackend = errors.New("backend down")
