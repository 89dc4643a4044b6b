package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/csvio"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/fileio"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
)

// DefaultExportName is the suggested destination for ExportFile.
const DefaultExportName = "members.csv"

// ImportFile asks picker for a source file and imports it. A cancelled pick
// returns a zero result.
func (s *Service) ImportFile(ctx context.Context, picker fileio.Picker) (models.ImportResult, error) {
	path, ok, err := picker.Open()
	if err != nil {
		return models.ImportResult{}, err
	}
	if !ok {
		return models.ImportResult{}, nil
	}
	content, err := fileio.ReadText(path)
	if err != nil {
		return models.ImportResult{}, err
	}
	return s.ImportCSV(ctx, content)
}

// ImportCSV merges CSV content into the ledger.
//
// Rows are checked in file order. Invalid rows count as failed without
// touching storage. A phone already seen earlier in the file counts as
// duplicated without a query, and a phone already stored counts as
// duplicated when the insert is refused. All inserts share one
// transaction. Only a storage failure that is not tied to a single row
// aborts the import, rolls everything back, and is returned; the counts
// are then meaningless.
func (s *Service) ImportCSV(ctx context.Context, content string) (models.ImportResult, error) {
	var result models.ImportResult

	rows, err := csvio.Decode(content)
	if err != nil {
		return result, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return result, nil
	}

	seen := make(map[string]struct{}, len(rows))
	err = s.store.ImportMembers(ctx, func(ctx context.Context, ins storage.MemberInserter) error {
		for _, row := range rows {
			in, ok := parseRow(row)
			if !ok {
				result.Failed++
				continue
			}
			if _, dup := seen[in.Phone]; dup {
				result.Duplicated++
				continue
			}
			seen[in.Phone] = struct{}{}

			err := ins.InsertMember(ctx, in)
			switch {
			case err == nil:
				result.Success++
			case errors.Is(err, storage.ErrDuplicatePhone):
				result.Duplicated++
			case errors.Is(err, storage.ErrRowRejected):
				result.Failed++
				s.log.WithFields(logrus.Fields{
					"line":  row.Line,
					"error": err,
				}).Debug("import row rejected")
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"rows":  len(rows),
			"error": err,
		}).Error("import rolled back")
		return result, fmt.Errorf("import members: %w", err)
	}

	s.metrics.ObserveImport(result.Success, result.Failed, result.Duplicated)
	s.log.WithFields(logrus.Fields{
		"success":    result.Success,
		"failed":     result.Failed,
		"duplicated": result.Duplicated,
	}).Info("import committed")
	return result, nil
}

// ExportCSV writes every member, newest first, to w.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	members, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	return csvio.Encode(w, members)
}

// ExportFile asks picker for a destination and writes the export there. It
// reports whether a file was written.
func (s *Service) ExportFile(ctx context.Context, picker fileio.Picker) (bool, error) {
	path, ok, err := picker.Save(DefaultExportName)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	var buf bytes.Buffer
	if err := s.ExportCSV(ctx, &buf); err != nil {
		return false, err
	}
	if err := fileio.WriteText(path, buf.String()); err != nil {
		return false, err
	}
	s.log.WithField("path", path).Info("members exported")
	return true, nil
}

func parseRow(row csvio.Row) (models.MemberInput, bool) {
	in := models.MemberInput{
		Name:  strings.TrimSpace(row.Get("name")),
		Phone: strings.TrimSpace(row.Get("phone")),
	}
	if in.Name == "" || in.Phone == "" {
		return in, false
	}
	t, err := models.ParseMemberType(row.Get("type"))
	if err != nil {
		return in, false
	}
	in.Type = t

	if raw := strings.TrimSpace(row.Get("balance")); raw != "" {
		b, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, false
		}
		in.Balance = b
	}
	return in, validate(in) == nil
}
