// Package ledger holds the member ledger rules that sit above storage:
// input validation, the CSV reconciliation import, export, and the
// dashboard summary.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/metrics"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
)

// ErrInvalidMember indicates member input failed validation.
var ErrInvalidMember = errors.New("invalid member")

// Service applies ledger rules on top of a MemberStore.
type Service struct {
	store   storage.MemberStore
	log     *logrus.Logger
	metrics *metrics.LedgerMetrics
	now     func() time.Time
}

// NewService wires a service. m may be nil.
func NewService(store storage.MemberStore, log *logrus.Logger, m *metrics.LedgerMetrics) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log, metrics: m, now: time.Now}
}

// List returns one page of members and the total for pagination. A non-empty
// keyword filters by phone substring.
func (s *Service) List(ctx context.Context, keyword string, page models.Page) ([]models.Member, int64, error) {
	page = page.Normalize()
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		members, err := s.store.ListPage(ctx, page)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.store.Count(ctx)
		if err != nil {
			return nil, 0, err
		}
		return members, total, nil
	}
	members, err := s.store.SearchByPhone(ctx, keyword, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.SearchCount(ctx, keyword)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// Get fetches a single member.
func (s *Service) Get(ctx context.Context, id int64) (models.Member, error) {
	return s.store.GetMember(ctx, id)
}

// Add validates and inserts a member.
func (s *Service) Add(ctx context.Context, in models.MemberInput) (models.Member, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return models.Member{}, err
	}
	created, err := s.store.AddMember(ctx, in)
	if err != nil {
		return models.Member{}, err
	}
	s.log.WithFields(logrus.Fields{
		"member_id": created.ID,
		"type":      created.Type.String(),
	}).Info("member added")
	return created, nil
}

// Update validates and overwrites a member. A missing id is a no-op.
func (s *Service) Update(ctx context.Context, id int64, in models.MemberInput) error {
	in = normalize(in)
	if err := validate(in); err != nil {
		return err
	}
	return s.store.UpdateMember(ctx, id, in)
}

// Delete removes a member together with its records.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.metrics.ObserveDelete(metrics.ScopeMember)
	s.log.WithField("member_id", id).Info("member deleted")
	return nil
}

// DeleteAll removes every member and record.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAllMembers(ctx); err != nil {
		return err
	}
	s.metrics.ObserveDelete(metrics.ScopeAll)
	s.log.Warn("all members deleted")
	return nil
}

// Consume charges one visit to the member.
func (s *Service) Consume(ctx context.Context, id int64) (models.MemberRecord, error) {
	rec, err := s.store.Consume(ctx, id)
	switch {
	case err == nil:
		s.metrics.ObserveConsumption(metrics.ResultCharged)
	case errors.Is(err, storage.ErrInsufficientBalance):
		s.metrics.ObserveConsumption(metrics.ResultInsufficient)
	case errors.Is(err, storage.ErrMemberNotFound):
		s.metrics.ObserveConsumption(metrics.ResultNotFound)
	default:
		s.metrics.ObserveConsumption(metrics.ResultError)
		s.log.WithFields(logrus.Fields{
			"member_id": id,
			"error":     err,
		}).Error("consume failed")
	}
	return rec, err
}

// Records returns a page of the member's consumption history.
func (s *Service) Records(ctx context.Context, id int64, page models.Page) ([]models.MemberRecord, error) {
	if _, err := s.store.GetMember(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListRecords(ctx, id, page)
}

// Stats builds the dashboard summary.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	var err error
	if st.Total, err = s.store.Count(ctx); err != nil {
		return models.Stats{}, err
	}
	if st.Saving, err = s.store.CountByType(ctx, models.Saving); err != nil {
		return models.Stats{}, err
	}
	if st.VIP, err = s.store.CountByType(ctx, models.VIP); err != nil {
		return models.Stats{}, err
	}
	if st.TotalBalance, err = s.store.SumBalance(ctx); err != nil {
		return models.Stats{}, err
	}
	if st.CreatedToday, err = s.store.CountCreatedOn(ctx, s.now()); err != nil {
		return models.Stats{}, err
	}
	return st, nil
}

func normalize(in models.MemberInput) models.MemberInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

func validate(in models.MemberInput) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidMember)
	case in.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidMember)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown type %d", ErrInvalidMember, in.Type)
	case math.IsNaN(in.Balance) || math.IsInf(in.Balance, 0):
		return fmt.Errorf("%w: balance must be a number", ErrInvalidMember)
	case in.Balance < 0:
		return fmt.Errorf("%w: balance must not be negative", ErrInvalidMember)
	}
	return nil
}
