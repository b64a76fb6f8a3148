package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

func newTestList(kv KV, user string) *List[item] {
	return NewList(ForUser(kv, user), "items", func(it *item, i int) {
		it.Index = i
	})
}

func TestListRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	l := newTestList(kv, "alice")

	require.NoError(t, l.SaveAll([]item{{Name: "a"}, {Name: "b"}, {Name: "c"}}))

	got := l.GetAll()
	require.Len(t, got, 3)
	for i, it := range got {
		assert.Equal(t, i, it.Index, "index must match iteration order")
	}
}

func TestListMissingKeyReadsEmpty(t *testing.T) {
	l := newTestList(NewMemoryKV(), "alice")
	assert.Empty(t, l.GetAll())
}

func TestListCorruptPayloadReadsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Put("alice:items", []byte("{not json")))

	l := newTestList(kv, "alice")
	assert.Empty(t, l.GetAll())
}

func TestListSaveAllOverwrites(t *testing.T) {
	kv := NewMemoryKV()
	l := newTestList(kv, "alice")

	require.NoError(t, l.SaveAll([]item{{Name: "a"}, {Name: "b"}}))
	require.NoError(t, l.SaveAll([]item{{Name: "c"}}))

	got := l.GetAll()
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, 0, got[0].Index)
}

func TestListClear(t *testing.T) {
	kv := NewMemoryKV()
	l := newTestList(kv, "alice")

	require.NoError(t, l.SaveAll([]item{{Name: "a"}}))
	require.NoError(t, l.Clear())
	assert.Empty(t, l.GetAll())
}

func TestListsAreNamespacedPerUser(t *testing.T) {
	kv := NewMemoryKV()
	alice := newTestList(kv, "alice")
	bob := newTestList(kv, "bob")

	require.NoError(t, alice.SaveAll([]item{{Name: "a"}}))

	assert.Len(t, alice.GetAll(), 1)
	assert.Empty(t, bob.GetAll())
}

func TestDetachedNamespaceNeverStores(t *testing.T) {
	kv := NewMemoryKV()
	l := newTestList(kv, "")

	require.NoError(t, l.SaveAll([]item{{Name: "a"}}))
	assert.Empty(t, l.GetAll(), "empty user identifier means no storage")
	require.NoError(t, l.Clear())
}
