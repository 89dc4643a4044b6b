package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
)

// Consume charges one visit at the member's tier price and logs it as a record.
//
// The debit is a conditional update checked by affected rows, so two callers
// that both pass the balance read cannot drive the balance negative under
// read committed isolation.
func (s *Store) Consume(ctx context.Context, memberID int64) (models.MemberRecord, error) {
	var rec models.MemberRecord
	err := s.inTx(ctx, "consume", func(tx pgx.Tx) error {
		member, err := scanMember(tx.QueryRow(ctx,
			`SELECT `+memberColumns+` FROM members WHERE id = $1 LIMIT 1`, memberID))
		if err != nil {
			if errors.Is(err, storage.ErrMemberNotFound) {
				return err
			}
			return txError("load member", err)
		}

		price, ok := member.Type.Price()
		if !ok {
			return fmt.Errorf("member %d has unknown type %d", memberID, member.Type)
		}
		if member.Balance < price {
			return storage.ErrInsufficientBalance
		}

		tag, err := tx.Exec(ctx,
			`UPDATE members SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
			price, memberID)
		if err != nil {
			return txError("debit balance", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrInsufficientBalance
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO member_records (member_id, amount)
			VALUES ($1, $2)
			RETURNING id, member_id, amount, created_at`,
			memberID, price).Scan(&rec.ID, &rec.MemberID, &rec.Amount, &rec.CreatedAt)
		if err != nil {
			return txError("insert record", err)
		}
		return nil
	})
	if err != nil {
		return models.MemberRecord{}, err
	}

	s.log.WithFields(logrus.Fields{
		"member_id": memberID,
		"amount":    rec.Amount,
	}).Debug("consumption recorded")
	return rec, nil
}

// DeleteMember removes a member and all of its records atomically.
func (s *Store) DeleteMember(ctx context.Context, id int64) error {
	return s.inTx(ctx, "delete member", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM member_records WHERE member_id = $1`, id); err != nil {
			return txError("delete records", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
			return txError("delete member", err)
		}
		return nil
	})
}

// DeleteAllMembers removes every member and record atomically.
func (s *Store) DeleteAllMembers(ctx context.Context) error {
	return s.inTx(ctx, "delete all members", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM member_records`); err != nil {
			return txError("delete records", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM members`); err != nil {
			return txError("delete members", err)
		}
		return nil
	})
}

// ImportMembers runs fn inside a single transaction shared by every row.
func (s *Store) ImportMembers(ctx context.Context, fn func(ctx context.Context, ins storage.MemberInserter) error) error {
	return s.inTx(ctx, "import members", func(tx pgx.Tx) error {
		return fn(ctx, &txInserter{tx: tx})
	})
}

// txInserter wraps every insert in a savepoint so a rejected row does not
// abort the enclosing import transaction.
type txInserter struct {
	tx pgx.Tx
}

func (i *txInserter) InsertMember(ctx context.Context, in models.MemberInput) error {
	sp, err := i.tx.Begin(ctx)
	if err != nil {
		return txError("savepoint", err)
	}

	tag, err := sp.Exec(ctx, `
		INSERT INTO members (name, phone, type, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone) DO NOTHING`,
		in.Name, in.Phone, int16(in.Type), in.Balance)
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return txError("rollback savepoint", rbErr)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == uniqueViolation {
				return storage.ErrDuplicatePhone
			}
			return fmt.Errorf("%w: %s", storage.ErrRowRejected, pgErr.Message)
		}
		return txError("insert member", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return txError("release savepoint", err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrDuplicatePhone
	}
	return nil
}
