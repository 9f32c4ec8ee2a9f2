package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fkhayef/invoicevista/internal/model"
)

type memUser struct {
	user model.User
	hash string
}

type memState struct {
	clients       map[int64]model.Client
	invoices      map[int64]model.Invoice
	payments      []model.Payment
	notifications map[int64]model.Notification
	users         map[int64]memUser
	nextID        map[string]int64
}

func newMemState() *memState {
	return &memState{
		clients:       make(map[int64]model.Client),
		invoices:      make(map[int64]model.Invoice),
		notifications: make(map[int64]model.Notification),
		users:         make(map[int64]memUser),
		nextID:        make(map[string]int64),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	c.payments = append([]model.Payment(nil), s.payments...)
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.nextID {
		c.nextID[k] = v
	}
	return c
}

func (s *memState) allocate(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Memory is an in-process Store. It is safe for concurrent use and is the
// store used by tests and by STORE_DRIVER=memory.
type Memory struct {
	mu    *sync.RWMutex
	state *memState
	inTx  bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{mu: &sync.RWMutex{}, state: newMemState()}
}

// lock returns the matching unlock func; inside a transaction the write
// lock is already held.
func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) rlock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

// WithTx holds the write lock for the duration of fn and restores the
// previous state if fn fails.
func (m *Memory) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	backup := m.state.clone()
	tx := &Memory{mu: m.mu, state: m.state, inTx: true}
	if err := fn(tx); err != nil {
		*m.state = *backup
		return err
	}
	if err := ctx.Err(); err != nil {
		*m.state = *backup
		return &OpError{Op: "commit", Err: err}
	}
	return nil
}

func (m *Memory) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	defer m.rlock()()

	c, ok := m.state.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	return &c, nil
}

func (m *Memory) CreateClient(ctx context.Context, c *model.Client) (int64, error) {
	defer m.lock()()

	row := *c
	row.ID = m.state.allocate(TableClients)
	m.state.clients[row.ID] = row
	return row.ID, nil
}

func (m *Memory) GetInvoice(ctx context.Context, id int64) (*model.Invoice, error) {
	defer m.rlock()()

	inv, ok := m.state.invoices[id]
	if !ok {
		return nil, notFound("invoice", id)
	}
	return &inv, nil
}

func (m *Memory) ListInvoicesByClient(ctx context.Context, clientID int64) ([]*model.Invoice, error) {
	defer m.rlock()()

	invoices := []*model.Invoice{}
	for _, inv := range m.state.invoices {
		if inv.ClientID == clientID {
			inv := inv
			invoices = append(invoices, &inv)
		}
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].ID < invoices[j].ID })
	return invoices, nil
}

func (m *Memory) CreateInvoice(ctx context.Context, inv *model.Invoice) (int64, error) {
	defer m.lock()()

	if _, ok := m.state.clients[inv.ClientID]; !ok {
		return 0, &OpError{Op: "insert", Table: TableInvoices, Err: fmt.Errorf("client %d does not exist", inv.ClientID)}
	}
	row := *inv
	row.ID = m.state.allocate(TableInvoices)
	m.state.invoices[row.ID] = row
	return row.ID, nil
}

func (m *Memory) UpdateInvoiceStatus(ctx context.Context, id int64, status model.InvoiceStatus) error {
	defer m.lock()()

	inv, ok := m.state.invoices[id]
	if !ok {
		return notFound("invoice", id)
	}
	inv.Status = status
	m.state.invoices[id] = inv
	return nil
}

func (m *Memory) ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]*model.Payment, error) {
	defer m.rlock()()

	payments := []*model.Payment{}
	for _, p := range m.state.payments {
		if p.InvoiceID == invoiceID {
			p := p
			payments = append(payments, &p)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].ID < payments[j].ID
		}
		return payments[i].PaidAt.Before(payments[j].PaidAt)
	})
	return payments, nil
}

func (m *Memory) InsertPayment(ctx context.Context, p *model.Payment) (int64, error) {
	defer m.lock()()

	if _, ok := m.state.invoices[p.InvoiceID]; !ok {
		return 0, &OpError{Op: "insert", Table: TablePayments, Err: fmt.Errorf("invoice %d does not exist", p.InvoiceID)}
	}
	row := *p
	row.ID = m.state.allocate(TablePayments)
	m.state.payments = append(m.state.payments, row)
	return row.ID, nil
}

func (m *Memory) GetNotificationByInvoice(ctx context.Context, invoiceID int64) (*model.Notification, error) {
	defer m.rlock()()

	var found *model.Notification
	for _, n := range m.state.notifications {
		if n.InvoiceID == invoiceID && (found == nil || n.ID < found.ID) {
			n := n
			found = &n
		}
	}
	if found == nil {
		return nil, notFound("notification for invoice", invoiceID)
	}
	return found, nil
}

func (m *Memory) CreateNotification(ctx context.Context, n *model.Notification) (int64, error) {
	defer m.lock()()

	if _, ok := m.state.invoices[n.InvoiceID]; !ok {
		return 0, &OpError{Op: "insert", Table: TableNotifications, Err: fmt.Errorf("invoice %d does not exist", n.InvoiceID)}
	}
	row := *n
	row.ID = m.state.allocate(TableNotifications)
	m.state.notifications[row.ID] = row
	return row.ID, nil
}

func (m *Memory) FindCredentials(ctx context.Context, username string) ([]*model.Credential, error) {
	defer m.rlock()()

	var credentials []*model.Credential
	for _, u := range m.state.users {
		if u.user.Username == username {
			credentials = append(credentials, &model.Credential{User: u.user, PasswordHash: u.hash})
		}
	}
	return credentials, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *model.User, passwordHash string) (int64, error) {
	defer m.lock()()

	if _, ok := m.state.clients[u.ClientID]; !ok {
		return 0, &OpError{Op: "insert", Table: TableUsers, Err: fmt.Errorf("client %d does not exist", u.ClientID)}
	}
	for _, existing := range m.state.users {
		if existing.user.Username == u.Username {
			return 0, fmt.Errorf("%s (users_username_key): %w", TableUsers, ErrDuplicate)
		}
	}
	row := *u
	row.ID = m.state.allocate(TableUsers)
	m.state.users[row.ID] = memUser{user: row, hash: passwordHash}
	return row.ID, nil
}
