package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
)

// ErrNotInitialized indicates the store has no open connection.
var ErrNotInitialized = errors.New("database not initialized")

// ErrDuplicatePhone indicates the phone uniqueness constraint rejected a write.
var ErrDuplicatePhone = errors.New("phone already registered")

// ErrMemberNotFound indicates the referenced member id does not exist.
var ErrMemberNotFound = errors.New("member not found")

// ErrInsufficientBalance indicates the balance does not cover the tier price.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrTransaction wraps storage failures that aborted a transaction.
var ErrTransaction = errors.New("transaction failed")

// ErrRowRejected indicates storage refused a single import row without
// invalidating the surrounding import transaction.
var ErrRowRejected = errors.New("row rejected")

// MemberInserter inserts members inside an import transaction.
type MemberInserter interface {
	InsertMember(ctx context.Context, in models.MemberInput) error
}

// MemberReader captures the read side of the member ledger.
type MemberReader interface {
	ListAll(ctx context.Context) ([]models.Member, error)
	ListPage(ctx context.Context, page models.Page) ([]models.Member, error)
	Count(ctx context.Context) (int64, error)
	SearchByPhone(ctx context.Context, keyword string, page models.Page) ([]models.Member, error)
	SearchCount(ctx context.Context, keyword string) (int64, error)
	CountByType(ctx context.Context, t models.MemberType) (int64, error)
	SumBalance(ctx context.Context) (float64, error)
	CountCreatedOn(ctx context.Context, day time.Time) (int64, error)
	GetMember(ctx context.Context, id int64) (models.Member, error)
	ListRecords(ctx context.Context, memberID int64, page models.Page) ([]models.MemberRecord, error)
}

// MemberStore captures every persistence operation of the ledger.
type MemberStore interface {
	MemberReader
	AddMember(ctx context.Context, in models.MemberInput) (models.Member, error)
	UpdateMember(ctx context.Context, id int64, in models.MemberInput) error
	DeleteMember(ctx context.Context, id int64) error
	DeleteAllMembers(ctx context.Context) error
	Consume(ctx context.Context, memberID int64) (models.MemberRecord, error)
	// ImportMembers runs fn inside one transaction and commits only if fn
	// returns nil.
	ImportMembers(ctx context.Context, fn func(ctx context.Context, ins MemberInserter) error) error
}
