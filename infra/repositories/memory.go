package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/giovaniif/instrument-closet/domain/category"
	"github.com/giovaniif/instrument-closet/domain/instrument"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
)

// Memory keeps every table in maps behind one RWMutex. Deleting an
// instrument or user drops its reservations and tags, like the SQL schema's
// cascades.
type Memory struct {
	mutex sync.RWMutex

	instruments  map[int64]instrument.Instrument
	reservations map[int64]reservation.Reservation
	categories   map[int64]category.Category
	tags         map[int64]map[int64]struct{}
	users        map[int64]user.User
	passwords    map[int64]string

	lastInstrumentId  int64
	lastReservationId int64
	lastCategoryId    int64
	lastUserId        int64
}

func NewMemory() *Memory {
	return &Memory{
		instruments:  make(map[int64]instrument.Instrument),
		reservations: make(map[int64]reservation.Reservation),
		categories:   make(map[int64]category.Category),
		tags:         make(map[int64]map[int64]struct{}),
		users:        make(map[int64]user.User),
		passwords:    make(map[int64]string),
	}
}

func (m *Memory) Instruments() *InstrumentMemory   { return &InstrumentMemory{m} }
func (m *Memory) Reservations() *ReservationMemory { return &ReservationMemory{m} }
func (m *Memory) Categories() *CategoryMemory      { return &CategoryMemory{m} }
func (m *Memory) Users() *UserMemory               { return &UserMemory{m} }

func sortedKeys[V any](items map[int64]V) []int64 {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type InstrumentMemory struct{ *Memory }

func (r *InstrumentMemory) Get(ctx context.Context, id int64) (instrument.Instrument, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	inst, ok := r.instruments[id]
	if !ok {
		return instrument.Instrument{}, instrument.NotFound(id)
	}
	return cloneInstrument(inst), nil
}

func (r *InstrumentMemory) List(ctx context.Context) ([]instrument.Instrument, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]instrument.Instrument, 0, len(r.instruments))
	for _, id := range sortedKeys(r.instruments) {
		out = append(out, cloneInstrument(r.instruments[id]))
	}
	return out, nil
}

func (r *InstrumentMemory) Create(ctx context.Context, inst instrument.Instrument) (instrument.Instrument, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.lastInstrumentId++
	inst.Id = r.lastInstrumentId
	inst.Categories = nil
	r.instruments[inst.Id] = cloneInstrument(inst)
	return cloneInstrument(inst), nil
}

func (r *InstrumentMemory) Update(ctx context.Context, inst instrument.Instrument) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.instruments[inst.Id]; !ok {
		return instrument.NotFound(inst.Id)
	}
	inst.Categories = nil
	r.instruments[inst.Id] = cloneInstrument(inst)
	return nil
}

func (r *InstrumentMemory) Delete(ctx context.Context, id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.instruments[id]; !ok {
		return instrument.NotFound(id)
	}
	delete(r.instruments, id)
	delete(r.tags, id)
	for resvId, resv := range r.reservations {
		if resv.InstrumentId == id {
			delete(r.reservations, resvId)
		}
	}
	return nil
}

func cloneInstrument(inst instrument.Instrument) instrument.Instrument {
	inst.Description = copyString(inst.Description)
	inst.ImageURL = copyString(inst.ImageURL)
	return inst
}

type ReservationMemory struct{ *Memory }

func (r *ReservationMemory) Create(ctx context.Context, resv reservation.Reservation) (reservation.Reservation, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.instruments[resv.InstrumentId]; !ok {
		return reservation.Reservation{}, instrument.NotFound(resv.InstrumentId)
	}
	if _, ok := r.users[resv.UserId]; !ok {
		return reservation.Reservation{}, user.NotFoundById(resv.UserId)
	}
	r.lastReservationId++
	resv.Id = r.lastReservationId
	resv.Notes = copyString(resv.Notes)
	r.reservations[resv.Id] = resv
	return cloneReservation(resv), nil
}

func (r *ReservationMemory) Get(ctx context.Context, id int64) (reservation.Reservation, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	resv, ok := r.reservations[id]
	if !ok {
		return reservation.Reservation{}, reservation.NotFound(id)
	}
	return cloneReservation(resv), nil
}

func (r *ReservationMemory) FindOverlapping(ctx context.Context, q reservation.Query) ([]reservation.Reservation, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var out []reservation.Reservation
	for _, id := range sortedKeys(r.reservations) {
		if resv := r.reservations[id]; q.Matches(resv) {
			out = append(out, cloneReservation(resv))
		}
	}
	return out, nil
}

// Update writes the mutable fields only; owner and instrument stay as stored.
func (r *ReservationMemory) Update(ctx context.Context, resv reservation.Reservation) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stored, ok := r.reservations[resv.Id]
	if !ok {
		return reservation.NotFound(resv.Id)
	}
	stored.Quantity = resv.Quantity
	stored.StartTime = resv.StartTime
	stored.EndTime = resv.EndTime
	stored.Notes = copyString(resv.Notes)
	r.reservations[resv.Id] = stored
	return nil
}

func (r *ReservationMemory) Remove(ctx context.Context, id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.reservations, id)
	return nil
}

func (r *ReservationMemory) FindAll(ctx context.Context, f reservation.Filter) ([]reservation.Reservation, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := []reservation.Reservation{}
	for _, id := range sortedKeys(r.reservations) {
		if resv := r.reservations[id]; f.Matches(resv) {
			out = append(out, cloneReservation(resv))
		}
	}
	return out, nil
}

func cloneReservation(resv reservation.Reservation) reservation.Reservation {
	resv.Notes = copyString(resv.Notes)
	return resv
}

type CategoryMemory struct{ *Memory }

func (r *CategoryMemory) Create(ctx context.Context, name string) (category.Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, c := range r.categories {
		if c.Category == name {
			return category.Category{}, category.Duplicate(name)
		}
	}
	r.lastCategoryId++
	c := category.Category{Id: r.lastCategoryId, Category: name}
	r.categories[c.Id] = c
	return c, nil
}

func (r *CategoryMemory) Get(ctx context.Context, id int64) (category.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return category.Category{}, category.NotFound(id)
	}
	return c, nil
}

func (r *CategoryMemory) List(ctx context.Context) ([]category.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]category.Category, 0, len(r.categories))
	for _, id := range sortedKeys(r.categories) {
		out = append(out, r.categories[id])
	}
	return out, nil
}

func (r *CategoryMemory) Rename(ctx context.Context, id int64, name string) (category.Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return category.Category{}, category.NotFound(id)
	}
	for otherId, other := range r.categories {
		if otherId != id && other.Category == name {
			return category.Category{}, category.Duplicate(name)
		}
	}
	c.Category = name
	r.categories[id] = c
	return c, nil
}

func (r *CategoryMemory) Delete(ctx context.Context, id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.categories[id]; !ok {
		return category.NotFound(id)
	}
	delete(r.categories, id)
	for _, tagged := range r.tags {
		delete(tagged, id)
	}
	return nil
}

func (r *CategoryMemory) Tag(ctx context.Context, instrumentId int64, categoryId int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.tags[instrumentId] == nil {
		r.tags[instrumentId] = make(map[int64]struct{})
	}
	r.tags[instrumentId][categoryId] = struct{}{}
	return nil
}

func (r *CategoryMemory) Untag(ctx context.Context, instrumentId int64, categoryId int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.tags[instrumentId], categoryId)
	return nil
}

func (r *CategoryMemory) ForInstrument(ctx context.Context, instrumentId int64) ([]category.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := []category.Category{}
	for _, id := range sortedKeys(r.tags[instrumentId]) {
		if c, ok := r.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type UserMemory struct{ *Memory }

func (r *UserMemory) Create(ctx context.Context, u user.User, passwordHash string) (user.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return user.User{}, user.Duplicate(u.Username)
		}
	}
	r.lastUserId++
	u.Id = r.lastUserId
	r.users[u.Id] = u
	r.passwords[u.Id] = passwordHash
	return u, nil
}

func (r *UserMemory) byUsername(username string) (user.User, bool) {
	for _, u := range r.users {
		if u.Username == username {
			return u, true
		}
	}
	return user.User{}, false
}

func (r *UserMemory) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	u, ok := r.byUsername(username)
	if !ok {
		return user.User{}, user.NotFound(username)
	}
	return u, nil
}

func (r *UserMemory) GetById(ctx context.Context, id int64) (user.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.NotFoundById(id)
	}
	return u, nil
}

func (r *UserMemory) PasswordHash(ctx context.Context, username string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	u, ok := r.byUsername(username)
	if !ok {
		return "", user.NotFound(username)
	}
	return r.passwords[u.Id], nil
}

func (r *UserMemory) List(ctx context.Context) ([]user.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]user.User, 0, len(r.users))
	for _, id := range sortedKeys(r.users) {
		out = append(out, r.users[id])
	}
	return out, nil
}

func (r *UserMemory) Update(ctx context.Context, u user.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	stored, ok := r.users[u.Id]
	if !ok {
		return user.NotFoundById(u.Id)
	}
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	stored.Email = u.Email
	stored.Phone = u.Phone
	r.users[u.Id] = stored
	return nil
}

func (r *UserMemory) Delete(ctx context.Context, username string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	u, ok := r.byUsername(username)
	if !ok {
		return user.NotFound(username)
	}
	delete(r.users, u.Id)
	delete(r.passwords, u.Id)
	for id, resv := range r.reservations {
		if resv.UserId == u.Id {
			delete(r.reservations, id)
		}
	}
	return nil
}

var (
	_ instrument.Repository  = (*InstrumentMemory)(nil)
	_ reservation.Repository = (*ReservationMemory)(nil)
	_ category.Repository    = (*CategoryMemory)(nil)
	_ user.Repository        = (*UserMemory)(nil)
)
