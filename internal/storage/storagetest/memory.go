// Package storagetest provides an in-memory MemberStore for tests.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
)

var _ storage.MemberStore = (*MemoryStore)(nil)

// MemoryStore mirrors the Postgres store semantics in memory. It is safe for
// concurrent use. Each mutation holds the lock for its whole duration, so
// it behaves like a serializable transaction.
type MemoryStore struct {
	mu      sync.Mutex
	members map[int64]models.Member
	records []models.MemberRecord
	nextID  int64
	nextRec int64

	// Now stamps created_at values. Defaults to time.Now.
	Now func() time.Time
	// InsertHook, when set, runs before every import insert. A non-nil
	// return is handed back to the importer instead of inserting.
	InsertHook func(in models.MemberInput) error
	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{members: make(map[int64]models.Member), Now: time.Now}
}

// Seed inserts members directly, bypassing validation, and returns them with ids.
func (s *MemoryStore) Seed(in ...models.MemberInput) []models.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Member, 0, len(in))
	for _, m := range in {
		created, _ := s.insertLocked(m)
		out = append(out, created)
	}
	return out
}

// Records returns every record stored for memberID, oldest first.
func (s *MemoryStore) Records(memberID int64) []models.MemberRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MemberRecord
	for _, r := range s.records {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	return out
}

// RecordCount returns the total number of records.
func (s *MemoryStore) RecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.sortedLocked(func(models.Member) bool { return true }), nil
}

func (s *MemoryStore) ListPage(ctx context.Context, page models.Page) ([]models.Member, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return window(all, page), nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.members)), nil
}

func (s *MemoryStore) SearchByPhone(ctx context.Context, keyword string, page models.Page) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	matched := s.sortedLocked(func(m models.Member) bool { return strings.Contains(m.Phone, keyword) })
	return window(matched, page), nil
}

func (s *MemoryStore) SearchCount(ctx context.Context, keyword string) (int64, error) {
	return s.countWhere(func(m models.Member) bool { return strings.Contains(m.Phone, keyword) })
}

func (s *MemoryStore) CountByType(ctx context.Context, t models.MemberType) (int64, error) {
	return s.countWhere(func(m models.Member) bool { return m.Type == t })
}

func (s *MemoryStore) SumBalance(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var total float64
	for _, m := range s.members {
		total += m.Balance
	}
	return total, nil
}

func (s *MemoryStore) CountCreatedOn(ctx context.Context, day time.Time) (int64, error) {
	y, mo, d := day.Date()
	return s.countWhere(func(m models.Member) bool {
		cy, cmo, cd := m.CreatedAt.In(day.Location()).Date()
		return cy == y && cmo == mo && cd == d
	})
}

func (s *MemoryStore) GetMember(ctx context.Context, id int64) (models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Member{}, s.Err
	}
	m, ok := s.members[id]
	if !ok {
		return models.Member{}, storage.ErrMemberNotFound
	}
	return m, nil
}

func (s *MemoryStore) ListRecords(ctx context.Context, memberID int64, page models.Page) ([]models.MemberRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.MemberRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].MemberID == memberID {
			out = append(out, s.records[i])
		}
	}
	page = page.Normalize()
	start := min(page.Offset(), len(out))
	end := min(start+page.Size, len(out))
	return append([]models.MemberRecord{}, out[start:end]...), nil
}

func (s *MemoryStore) AddMember(ctx context.Context, in models.MemberInput) (models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Member{}, s.Err
	}
	return s.insertLocked(in)
}

func (s *MemoryStore) UpdateMember(ctx context.Context, id int64, in models.MemberInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	m, ok := s.members[id]
	if !ok {
		return nil
	}
	for otherID, other := range s.members {
		if otherID != id && other.Phone == in.Phone {
			return storage.ErrDuplicatePhone
		}
	}
	m.Name, m.Phone, m.Type, m.Balance = in.Name, in.Phone, in.Type, in.Balance
	s.members[id] = m
	return nil
}

func (s *MemoryStore) DeleteMember(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if r.MemberID != id {
			kept = append(kept, r)
		}
	}
	s.records = kept
	delete(s.members, id)
	return nil
}

func (s *MemoryStore) DeleteAllMembers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.records = nil
	s.members = make(map[int64]models.Member)
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, memberID int64) (models.MemberRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.MemberRecord{}, s.Err
	}
	m, ok := s.members[memberID]
	if !ok {
		return models.MemberRecord{}, storage.ErrMemberNotFound
	}
	price, _ := m.Type.Price()
	if m.Balance < price {
		return models.MemberRecord{}, storage.ErrInsufficientBalance
	}
	m.Balance -= price
	s.members[memberID] = m
	s.nextRec++
	rec := models.MemberRecord{ID: s.nextRec, MemberID: memberID, Amount: price, CreatedAt: s.Now()}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *MemoryStore) ImportMembers(ctx context.Context, fn func(ctx context.Context, ins storage.MemberInserter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	snapshot := make(map[int64]models.Member, len(s.members))
	for id, m := range s.members {
		snapshot[id] = m
	}
	nextID := s.nextID

	if err := fn(ctx, memoryInserter{s}); err != nil {
		s.members = snapshot
		s.nextID = nextID
		return err
	}
	return nil
}

type memoryInserter struct {
	s *MemoryStore
}

func (i memoryInserter) InsertMember(ctx context.Context, in models.MemberInput) error {
	if i.s.InsertHook != nil {
		if err := i.s.InsertHook(in); err != nil {
			return err
		}
	}
	_, err := i.s.insertLocked(in)
	return err
}

func (s *MemoryStore) insertLocked(in models.MemberInput) (models.Member, error) {
	for _, m := range s.members {
		if m.Phone == in.Phone {
			return models.Member{}, storage.ErrDuplicatePhone
		}
	}
	s.nextID++
	m := models.Member{
		ID:        s.nextID,
		Name:      in.Name,
		Phone:     in.Phone,
		Type:      in.Type,
		Balance:   in.Balance,
		CreatedAt: s.Now(),
	}
	s.members[m.ID] = m
	return m, nil
}

func (s *MemoryStore) countWhere(match func(models.Member) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, m := range s.members {
		if match(m) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) sortedLocked(match func(models.Member) bool) []models.Member {
	out := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		if match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out
}

func window(members []models.Member, page models.Page) []models.Member {
	page = page.Normalize()
	start := min(page.Offset(), len(members))
	end := min(start+page.Size, len(members))
	return members[start:end]
}
