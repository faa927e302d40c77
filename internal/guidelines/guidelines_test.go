package guidelines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guidelines.json")
	store, err := NewStore(path, logrus.New())
	assert.NoError(t, err)
	return store
}

func TestNewStore_MissingFileStartsEmpty(t *testing.T) {
	store := newTestStore(t)
	assert.Empty(t, store.List())
}

func TestStore_AddAndList(t *testing.T) {
	store := newTestStore(t)

	d := 1.0
	err := store.Add(Guideline{
		Description: "Stay within one mile",
		Criteria:    Criteria{MaxDistanceMiles: &d},
	})
	assert.NoError(t, err)

	list := store.List()
	assert.Len(t, list, 1)
	assert.Equal(t, "Stay within one mile", list[0].Description)
	// Zero priority defaults to normal.
	assert.Equal(t, PriorityNormal, list[0].Priority)
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guidelines.json")
	logger := logrus.New()

	store, err := NewStore(path, logger)
	assert.NoError(t, err)
	ok, err := store.AddInstruction("Comps must be within 1 mile")
	assert.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := NewStore(path, logger)
	assert.NoError(t, err)
	list := reloaded.List()
	assert.Len(t, list, 1)
	assert.Equal(t, PriorityRequired, list[0].Priority)
	assert.NotNil(t, list[0].Criteria.MaxDistanceMiles)
	assert.Equal(t, 1.0, *list[0].Criteria.MaxDistanceMiles)
}

func TestStore_AddInstruction_Unparseable(t *testing.T) {
	store := newTestStore(t)
	ok, err := store.AddInstruction("Pick nice houses please")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.List())
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	ok, err := store.AddInstruction("Comps must be within 1 mile")
	assert.NoError(t, err)
	assert.True(t, ok)

	removed, err := store.Remove(5)
	assert.NoError(t, err)
	assert.False(t, removed)

	removed, err = store.Remove(0)
	assert.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, store.List())
}

func TestStore_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guidelines.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStore(path, logrus.New())
	assert.Error(t, err)
}
