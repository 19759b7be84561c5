package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hima852/expenseflow/internal/domain/entity"
)

func newStore(t *testing.T) *ReceiptStore {
	t.Helper()
	store, err := NewReceiptStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestSave_RejectsDisallowedExtensions(t *testing.T) {
	store := newStore(t)

	for _, filename := range []string{"receipt.exe", "receipt.txt", "receipt", "receipt.pdf.sh"} {
		_, err := store.Save(context.Background(), filename, []byte("data"))
		var validationErr *entity.ValidationError
		require.ErrorAs(t, err, &validationErr, filename)
		assert.Equal(t, "INVALID_FILE_TYPE", validationErr.ErrorCode())
	}
}

func TestSave_RejectsEmptyFile(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(context.Background(), "receipt.jpg", nil)
	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "EMPTY_FILE", validationErr.ErrorCode())
}

func TestSave_RejectsUnreadablePDF(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(context.Background(), "receipt.pdf", []byte("not a pdf at all"))
	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "UNREADABLE_PDF", validationErr.ErrorCode())
}

func TestSaveAndOpen_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	content := []byte("fake image bytes")

	key, err := store.Save(ctx, "hotel bill.JPG", content)
	require.NoError(t, err)

	// Keys are opaque: extension preserved, original name gone.
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotContains(t, key, "hotel")

	reader, size, contentType, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, "image/jpeg", contentType)

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSave_KeysAreUnique(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	k1, err := store.Save(ctx, "a.png", []byte("one"))
	require.NoError(t, err)
	k2, err := store.Save(ctx, "a.png", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestOpen_UnknownKey(t *testing.T) {
	store := newStore(t)

	_, _, _, err := store.Open(context.Background(), "missing.png")
	var notFound *entity.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestOpen_PathTraversalBlocked(t *testing.T) {
	store := newStore(t)

	// Base(key) strips the traversal; the remaining name is simply
	// absent from the store.
	_, _, _, err := store.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}
