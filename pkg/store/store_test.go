package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "notices.db"))
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })

	return s
}

func TestSaveAndList(t *testing.T) {
	s := newTestStore(t)

	err := s.Save(
		Notice{GUID: "n-1", DebtorINN: "7707083893", Type: "AuctionStart", PublishedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		Notice{GUID: "n-2", DebtorINN: "7707083893", Type: "DebtRestructuring", PublishedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		Notice{GUID: "n-3", DebtorINN: "5003052454", Type: "AuctionStart", PublishedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
	)
	require.NoError(t, err)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	notices, err := s.List(10, 0)
	require.NoError(t, err)

	require.Len(t, notices, 3)
	assert.Equal(t, "n-3", notices[0].GUID)
}

func TestSaveUpsertsOnGUID(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Notice{GUID: "n-1", Type: "AuctionStart"}))
	require.NoError(t, s.Save(Notice{GUID: "n-1", Type: "AuctionResult"}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	notices, err := s.List(10, 0)
	require.NoError(t, err)

	require.Len(t, notices, 1)
	assert.Equal(t, "AuctionResult", notices[0].Type)
}

func TestByINN(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(
		Notice{GUID: "n-1", DebtorINN: "7707083893"},
		Notice{GUID: "n-2", DebtorINN: "5003052454"},
	))

	notices, err := s.ByINN("7707083893", 10, 0)
	require.NoError(t, err)

	require.Len(t, notices, 1)
	assert.Equal(t, "n-1", notices[0].GUID)
}

func TestFromPayload(t *testing.T) {
	n := FromPayload(map[string]any{
		"guid":        "abc-123",
		"inn":         "7707083893",
		"debtorName":  "OOO Romashka",
		"type":        "AuctionStart",
		"datePublish": "2025-03-01T10:30:00",
	})

	assert.Equal(t, "abc-123", n.GUID)
	assert.Equal(t, "7707083893", n.DebtorINN)
	assert.Equal(t, "OOO Romashka", n.DebtorName)
	assert.Equal(t, "AuctionStart", n.Type)
	assert.Equal(t, 2025, n.PublishedAt.Year())
	assert.Equal(t, "abc-123", n.Payload["guid"])
}

func TestFromPayloadSynthesizesGUID(t *testing.T) {
	n := FromPayload(map[string]any{
		"inn":  "7707083893",
		"type": "AuctionStart",
	})

	assert.NotEmpty(t, n.GUID)
	assert.Contains(t, n.GUID, "7707083893")
}
