package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/fileio"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage/storagetest"
)

const sampleImport = "name,phone,type,balance\n" +
	"Alice,111,1,0\n" +
	"Bob,222,2,50\n" +
	"Alice2,111,1,0\n"

func TestImportCSV_FirstSeenPhoneWins(t *testing.T) {
	store := storagetest.NewMemoryStore()
	svc := NewService(store, nil, nil)

	res, err := svc.ImportCSV(context.Background(), sampleImport)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Success: 2, Failed: 0, Duplicated: 1}, res)

	members, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	byPhone := map[string]models.Member{}
	for _, m := range members {
		byPhone[m.Phone] = m
	}
	assert.Equal(t, "Alice", byPhone["111"].Name)
	assert.Equal(t, models.VIP, byPhone["222"].Type)
	assert.Equal(t, 50.0, byPhone["222"].Balance)
}

func TestImportCSV_ReimportIsAllDuplicated(t *testing.T) {
	store := storagetest.NewMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.ImportCSV(ctx, sampleImport)
	require.NoError(t, err)

	res, err := svc.ImportCSV(ctx, sampleImport)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Duplicated: 3}, res)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestImportCSV_InvalidRowsCountAsFailed(t *testing.T) {
	store := storagetest.NewMemoryStore()
	svc := NewService(store, nil, nil)

	content := "name,phone,type,balance\n" +
		",333,1,0\n" + // missing name
		"Carol,,1,0\n" + // missing phone
		"Dan,444,9,0\n" + // unknown type
		"Eve,555,1,abc\n" + // bad balance
		"Fay,666,1,-5\n" + // negative balance
		"Gus,777,vip,\n" // named type, empty balance

	res, err := svc.ImportCSV(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Success: 1, Failed: 5}, res)

	m, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.Equal(t, "Gus", m[0].Name)
	assert.Equal(t, models.VIP, m[0].Type)
	assert.Zero(t, m[0].Balance)
}

func TestImportCSV_InvalidRowDoesNotClaimPhone(t *testing.T) {
	svc := NewService(storagetest.NewMemoryStore(), nil, nil)

	content := "name,phone,type,balance\n" +
		"Bad,111,7,0\n" +
		"Good,111,1,0\n"

	res, err := svc.ImportCSV(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Success: 1, Failed: 1}, res)
}

func TestImportCSV_RowRejectedByStorage(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.InsertHook = func(in models.MemberInput) error {
		if in.Phone == "222" {
			return fmt.Errorf("%w: value too long", storage.ErrRowRejected)
		}
		return nil
	}
	svc := NewService(store, nil, nil)

	res, err := svc.ImportCSV(context.Background(), sampleImport)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Success: 1, Failed: 1, Duplicated: 1}, res)
}

func TestImportCSV_FatalErrorRollsBack(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Seed(models.MemberInput{Name: "Existing", Phone: "999", Type: models.Saving, Balance: 10})

	boom := errors.New("connection reset")
	store.InsertHook = func(in models.MemberInput) error {
		if in.Phone == "222" {
			return boom
		}
		return nil
	}
	svc := NewService(store, nil, nil)

	_, err := svc.ImportCSV(context.Background(), sampleImport)
	require.ErrorIs(t, err, boom)

	members, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "999", members[0].Phone)
}

func TestImportCSV_EmptyAndHeaderOnly(t *testing.T) {
	svc := NewService(storagetest.NewMemoryStore(), nil, nil)
	for _, content := range []string{"", "name,phone,type,balance\n", "\ufeffname,phone,type,balance\n\n\n"} {
		res, err := svc.ImportCSV(context.Background(), content)
		require.NoError(t, err)
		assert.Equal(t, models.ImportResult{}, res)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := storagetest.NewMemoryStore()
	src.Seed(
		models.MemberInput{Name: "Smith, Jr.", Phone: "111", Type: models.Saving, Balance: 12.5},
		models.MemberInput{Name: `Quote "Q"`, Phone: "222", Type: models.VIP, Balance: 0},
	)

	var buf bytes.Buffer
	require.NoError(t, NewService(src, nil, nil).ExportCSV(ctx, &buf))

	dst := storagetest.NewMemoryStore()
	res, err := NewService(dst, nil, nil).ImportCSV(ctx, buf.String())
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Success: 2}, res)

	want, _ := src.ListAll(ctx)
	got, _ := dst.ListAll(ctx)
	require.Len(t, got, len(want))
	key := func(ms []models.Member) map[string]models.MemberInput {
		out := map[string]models.MemberInput{}
		for _, m := range ms {
			out[m.Phone] = models.MemberInput{Name: m.Name, Phone: m.Phone, Type: m.Type, Balance: m.Balance}
		}
		return out
	}
	assert.Equal(t, key(want), key(got))
}

func TestExportFile_WritesAndCancels(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewMemoryStore()
	store.Seed(models.MemberInput{Name: "Alice", Phone: "111", Type: models.Saving, Balance: 30})
	svc := NewService(store, nil, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	written, err := svc.ExportFile(ctx, fileio.PromptPicker{Path: path})
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,phone,type,balance\nAlice,111,1,30\n", string(data))

	// An existing file without a prompt is left alone.
	written, err = svc.ExportFile(ctx, fileio.PromptPicker{Path: path})
	require.NoError(t, err)
	assert.False(t, written)
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storagetest.NewMemoryStore(), nil, nil)

	res, err := svc.ImportFile(ctx, fileio.PromptPicker{})
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{}, res)

	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleImport), 0o644))

	res, err = svc.ImportFile(ctx, fileio.PromptPicker{Path: path})
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Success: 2, Duplicated: 1}, res)
}
