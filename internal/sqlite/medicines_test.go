package sqlite

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apothekit/stockroom/pkg/types"
)

func attachedBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(testConfig(t.TempDir())))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestPutMedicineCreate(t *testing.T) {
	b := attachedBackend(t)

	m := &types.Medicine{Name: "Aspirin", Stock: 25, Aisle: "A"}
	id, err := b.PutMedicine(m)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	got, err := b.GetMedicine(id)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", got.Name)
	assert.Equal(t, 25, got.Stock)
	assert.Equal(t, "A", got.Aisle)
}

func TestPutMedicineValidation(t *testing.T) {
	b := attachedBackend(t)

	_, err := b.PutMedicine(&types.Medicine{Name: "", Stock: 5})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	_, err = b.PutMedicine(&types.Medicine{Name: "Aspirin", Stock: -1})
	assert.ErrorIs(t, err, types.ErrNegativeStock)
}

func TestPutMedicineUpdate(t *testing.T) {
	b := attachedBackend(t)

	id, err := b.PutMedicine(&types.Medicine{Name: "Aspirin", Stock: 25, Aisle: "A"})
	require.NoError(t, err)

	_, err = b.PutMedicine(&types.Medicine{ID: id, Name: "Aspirin 500mg", Stock: 30, Aisle: "B"})
	require.NoError(t, err)

	got, err := b.GetMedicine(id)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin 500mg", got.Name)
	assert.Equal(t, 30, got.Stock)
	assert.Equal(t, "B", got.Aisle)

	// Updating an unknown ID is an observable error, not a silent no-op.
	_, err = b.PutMedicine(&types.Medicine{ID: "missing", Name: "X", Stock: 1})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteMedicine(t *testing.T) {
	b := attachedBackend(t)

	id, err := b.PutMedicine(&types.Medicine{Name: "Ibuprofen", Stock: 10, Aisle: "C"})
	require.NoError(t, err)

	require.NoError(t, b.DeleteMedicine(id))

	_, err = b.GetMedicine(id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, b.DeleteMedicine(id), types.ErrNotFound)
}

func TestListMedicinesOrderedByName(t *testing.T) {
	b := attachedBackend(t)

	for _, name := range []string{"Paracetamol", "Aspirin", "Ibuprofen"} {
		_, err := b.PutMedicine(&types.Medicine{Name: name, Stock: 1, Aisle: "A"})
		require.NoError(t, err)
	}

	list, err := b.ListMedicines()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Aspirin", list[0].Name)
	assert.Equal(t, "Ibuprofen", list[1].Name)
	assert.Equal(t, "Paracetamol", list[2].Name)
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	b := attachedBackend(t)

	id, err := b.PutMedicine(&types.Medicine{Name: "Aspirin", Stock: 25, Aisle: "A"})
	require.NoError(t, err)

	before, after, err := b.AdjustStock(id, -30)
	require.NoError(t, err)
	assert.Equal(t, 25, before)
	assert.Equal(t, 0, after)

	got, err := b.GetMedicine(id)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestAdjustStockUnknownID(t *testing.T) {
	b := attachedBackend(t)

	_, _, err := b.AdjustStock("missing", 5)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAdjustStockConcurrent(t *testing.T) {
	b := attachedBackend(t)

	id, err := b.PutMedicine(&types.Medicine{Name: "Aspirin", Stock: 0, Aisle: "A"})
	require.NoError(t, err)

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, _, err := b.AdjustStock(id, 1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := b.GetMedicine(id)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, got.Stock, "no increment may be lost")
}

func TestSearchMedicines(t *testing.T) {
	b := attachedBackend(t)

	for i, name := range []string{"Aspirin", "Aspirin Forte", "Paracetamol"} {
		_, err := b.PutMedicine(&types.Medicine{Name: name, Stock: i, Aisle: "A"})
		require.NoError(t, err)
	}

	results, err := b.SearchMedicines("aspirin", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Aspirin", results[0].Name)
	assert.Equal(t, "Aspirin Forte", results[1].Name)

	// Bounded result size.
	results, err = b.SearchMedicines("aspirin", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// LIKE wildcards in the query are literals, not patterns.
	results, err = b.SearchMedicines("%", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMedicinesLargeSet(t *testing.T) {
	b := attachedBackend(t)

	for i := 0; i < 30; i++ {
		_, err := b.PutMedicine(&types.Medicine{Name: fmt.Sprintf("Med %02d", i), Stock: 1, Aisle: "A"})
		require.NoError(t, err)
	}

	results, err := b.SearchMedicines("Med", 25)
	require.NoError(t, err)
	assert.Len(t, results, 25)
}
