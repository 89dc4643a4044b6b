package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
)

const memberColumns = `id, name, phone, type, balance, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListAll returns every member, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Member, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return collectMembers(rows)
}

// ListPage returns one page of members, newest first.
func (s *Store) ListPage(ctx context.Context, page models.Page) ([]models.Member, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	rows, err := db.Query(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY id DESC LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list member page: %w", err)
	}
	return collectMembers(rows)
}

// Count returns the total number of members.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.scalarCount(ctx, "count members", `SELECT COUNT(*) FROM members`)
}

// SearchByPhone returns one page of members whose phone contains keyword.
func (s *Store) SearchByPhone(ctx context.Context, keyword string, page models.Page) ([]models.Member, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	rows, err := db.Query(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE phone LIKE $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`,
		containsPattern(keyword), page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	return collectMembers(rows)
}

// SearchCount returns how many members match SearchByPhone.
func (s *Store) SearchCount(ctx context.Context, keyword string) (int64, error) {
	return s.scalarCount(ctx, "count search",
		`SELECT COUNT(*) FROM members WHERE phone LIKE $1`, containsPattern(keyword))
}

// CountByType returns how many members hold tier t.
func (s *Store) CountByType(ctx context.Context, t models.MemberType) (int64, error) {
	return s.scalarCount(ctx, "count by type",
		`SELECT COUNT(*) FROM members WHERE type = $1`, int16(t))
}

// SumBalance returns the sum of all balances, 0 when there are no members.
func (s *Store) SumBalance(ctx context.Context) (float64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var total float64
	if err := db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0)::float8 FROM members`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum balance: %w", err)
	}
	return total, nil
}

// CountCreatedOn counts members created on the calendar day of day, in day's location.
func (s *Store) CountCreatedOn(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	return s.scalarCount(ctx, "count created",
		`SELECT COUNT(*) FROM members WHERE created_at >= $1 AND created_at < $2`, start, end)
}

// GetMember fetches a member by id.
func (s *Store) GetMember(ctx context.Context, id int64) (models.Member, error) {
	db, err := s.conn()
	if err != nil {
		return models.Member{}, err
	}
	return scanMember(db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
}

// AddMember inserts a new member row.
func (s *Store) AddMember(ctx context.Context, in models.MemberInput) (models.Member, error) {
	db, err := s.conn()
	if err != nil {
		return models.Member{}, err
	}
	row := db.QueryRow(ctx, `
		INSERT INTO members (name, phone, type, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING `+memberColumns,
		in.Name, in.Phone, int16(in.Type), in.Balance)
	created, err := scanMember(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Member{}, storage.ErrDuplicatePhone
		}
		return models.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return created, nil
}

// UpdateMember overwrites every writable field. A missing id is not an error.
func (s *Store) UpdateMember(ctx context.Context, id int64, in models.MemberInput) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx,
		`UPDATE members SET name = $1, phone = $2, type = $3, balance = $4 WHERE id = $5`,
		in.Name, in.Phone, int16(in.Type), in.Balance, id)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicatePhone
		}
		return fmt.Errorf("update member %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		s.log.WithField("member_id", id).Debug("update matched no member")
	}
	return nil
}

// ListRecords returns one page of a member's consumption records, newest first.
func (s *Store) ListRecords(ctx context.Context, memberID int64, page models.Page) ([]models.MemberRecord, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	rows, err := db.Query(ctx, `
		SELECT id, member_id, amount, created_at FROM member_records
		WHERE member_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`,
		memberID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]models.MemberRecord, 0)
	for rows.Next() {
		var rec models.MemberRecord
		if err := rows.Scan(&rec.ID, &rec.MemberID, &rec.Amount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *Store) scalarCount(ctx context.Context, op, query string, args ...any) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

func collectMembers(rows pgx.Rows) ([]models.Member, error) {
	defer rows.Close()
	members := make([]models.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read members: %w", err)
	}
	return members, nil
}

func scanMember(row pgx.Row) (models.Member, error) {
	var m models.Member
	var memberType int16
	if err := row.Scan(&m.ID, &m.Name, &m.Phone, &memberType, &m.Balance, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Member{}, storage.ErrMemberNotFound
		}
		return models.Member{}, err
	}
	m.Type = models.MemberType(memberType)
	return m, nil
}
