package services

import (
	"context"
	"fmt"
	"time"

	"rental-backend/internal/models"
)

// In-memory fakes for the collaborator stores. Get returns copies so a
// caller's snapshot stays a real pre-operation snapshot.

type fakeTenantStore struct {
	nextID  int
	tenants map[int]*models.Tenant

	createErr        error
	failCreateOnCall int // 1-based call number; 0 fails every call when createErr is set
	updateErr        error
	endLeaseErr      error
	archiveErr       error
	setContractErr   error
	attachErr        error

	createCalls   int
	endLeaseCalls int
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{tenants: make(map[int]*models.Tenant)}
}

func (f *fakeTenantStore) Create(ctx context.Context, t *models.Tenant) error {
	f.createCalls++
	if f.createErr != nil && (f.failCreateOnCall == 0 || f.failCreateOnCall == f.createCalls) {
		return f.createErr
	}
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.tenants[t.ID] = &cp
	return nil
}

func (f *fakeTenantStore) Update(ctx context.Context, id int, patch *models.TenantPatch) (*models.Tenant, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	t, ok := f.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant %d missing", id)
	}
	if patch.FullName != nil {
		t.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		t.Phone = *patch.Phone
	}
	if patch.LeaseStart != nil {
		t.LeaseStart = patch.LeaseStart
	}
	if patch.LeaseEnd != nil {
		t.LeaseEnd = patch.LeaseEnd
	}
	if patch.RentPrice != nil {
		t.RentPrice = *patch.RentPrice
	}
	if patch.Deposit != nil {
		t.Deposit = *patch.Deposit
	}
	if patch.Vehicles != nil {
		t.Vehicles = patch.Vehicles
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTenantStore) Get(ctx context.Context, id int) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTenantStore) EndLease(ctx context.Context, id int, endDate time.Time) error {
	f.endLeaseCalls++
	if f.endLeaseErr != nil {
		return f.endLeaseErr
	}
	t, ok := f.tenants[id]
	if !ok {
		return fmt.Errorf("tenant %d missing", id)
	}
	t.Status = models.TenantEnded
	t.LeaseEnd = &endDate
	return nil
}

func (f *fakeTenantStore) Archive(ctx context.Context, id int) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	t, ok := f.tenants[id]
	if !ok {
		return fmt.Errorf("tenant %d missing", id)
	}
	t.Status = models.TenantEnded
	t.IsArchived = true
	return nil
}

func (f *fakeTenantStore) SetContract(ctx context.Context, tenantID int, contractID *int) error {
	if f.setContractErr != nil {
		return f.setContractErr
	}
	t, ok := f.tenants[tenantID]
	if !ok {
		return fmt.Errorf("tenant %d missing", tenantID)
	}
	t.ContractID = contractID
	return nil
}

func (f *fakeTenantStore) AttachImages(ctx context.Context, tenantID int, urls []string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	t, ok := f.tenants[tenantID]
	if !ok {
		return fmt.Errorf("tenant %d missing", tenantID)
	}
	t.Images = append(t.Images, urls...)
	return nil
}

type fakeRoomStore struct {
	rooms map[int]*models.Room

	getErr          error
	updateStatusErr error
}

func newFakeRoomStore(rooms ...*models.Room) *fakeRoomStore {
	f := &fakeRoomStore{rooms: make(map[int]*models.Room)}
	for _, r := range rooms {
		cp := *r
		f.rooms[r.ID] = &cp
	}
	return f
}

func (f *fakeRoomStore) Get(ctx context.Context, id int) (*models.Room, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoomStore) UpdateStatus(ctx context.Context, id int, status string, leaseStart, leaseEnd *time.Time) error {
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	r, ok := f.rooms[id]
	if !ok {
		return fmt.Errorf("room %d missing", id)
	}
	r.Status = status
	r.LeaseStart = leaseStart
	r.LeaseEnd = leaseEnd
	return nil
}

type fakeContractStore struct {
	nextID    int
	contracts map[int]*models.Contract

	createErr          error
	updateErr          error
	deleteErr          error
	listErr            error
	updateStatusErr    error
	failStatusForID    int
	updateStatusErrFor error
}

func newFakeContractStore(contracts ...*models.Contract) *fakeContractStore {
	f := &fakeContractStore{contracts: make(map[int]*models.Contract)}
	for _, c := range contracts {
		cp := *c
		f.contracts[c.ID] = &cp
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeContractStore) Create(ctx context.Context, c *models.Contract) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.contracts[c.ID] = &cp
	return nil
}

func (f *fakeContractStore) Update(ctx context.Context, c *models.Contract) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.contracts[c.ID]; !ok {
		return fmt.Errorf("contract %d missing", c.ID)
	}
	cp := *c
	f.contracts[c.ID] = &cp
	return nil
}

func (f *fakeContractStore) Delete(ctx context.Context, id int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.contracts, id)
	return nil
}

func (f *fakeContractStore) Get(ctx context.Context, id int) (*models.Contract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContractStore) ListByRoom(ctx context.Context, roomID int) ([]*models.Contract, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Contract
	for _, c := range f.contracts {
		if c.RoomID == roomID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeContractStore) UpdateStatus(ctx context.Context, id int, status string) error {
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	if f.failStatusForID != 0 && f.failStatusForID == id {
		return f.updateStatusErrFor
	}
	c, ok := f.contracts[id]
	if !ok {
		return fmt.Errorf("contract %d missing", id)
	}
	c.Status = status
	return nil
}

type fakeDepositStore struct {
	deposits map[int]*models.DepositContract

	findErr      error
	setStatusErr error
}

func newFakeDepositStore(deposits ...*models.DepositContract) *fakeDepositStore {
	f := &fakeDepositStore{deposits: make(map[int]*models.DepositContract)}
	for _, d := range deposits {
		cp := *d
		f.deposits[d.ID] = &cp
	}
	return f
}

func (f *fakeDepositStore) FindActiveByRoom(ctx context.Context, roomID int) (*models.DepositContract, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, d := range f.deposits {
		if d.RoomID == roomID && d.Status == models.DepositActive {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDepositStore) SetStatus(ctx context.Context, id int, status string) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	d, ok := f.deposits[id]
	if !ok {
		return fmt.Errorf("deposit %d missing", id)
	}
	d.Status = status
	return nil
}

type fakeImageStore struct {
	uploadErr error
	uploaded  []string
}

func (f *fakeImageStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, key)
	return "https://cdn.example.com/" + key, nil
}
