package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/evalrt/service/dao"
)

type record struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

var recordEntity = Entity[string, record]{
	Key:    func(r *record) string { return r.ID },
	Fields: func(r *record) map[string]string { return map[string]string{"Owner": r.Owner} },
	Clone: func(r *record) *record {
		ret := *r
		return &ret
	},
}

func TestStores(t *testing.T) {
	fsStore, err := NewFSStore(afs.New(), t.TempDir(), recordEntity)
	require.NoError(t, err)
	var testCases = []struct {
		description string
		store       dao.Service[string, record]
	}{
		{description: "memory", store: NewMemoryStore(recordEntity)},
		{description: "fs", store: fsStore},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			s := testCase.store
			assert.True(t, errors.Is(s.Save(ctx, nil), dao.ErrNilEntity))
			assert.True(t, errors.Is(s.Save(ctx, &record{}), dao.ErrInvalidID))

			for _, item := range []*record{{ID: "a", Owner: "x"}, {ID: "b", Owner: "y"}, {ID: "c", Owner: "x"}} {
				require.NoError(t, s.Save(ctx, item))
			}
			loaded, err := s.Load(ctx, "b")
			require.NoError(t, err)
			assert.Equal(t, "y", loaded.Owner)
			loaded.Owner = "mutated"
			reloaded, _ := s.Load(ctx, "b")
			assert.Equal(t, "y", reloaded.Owner)

			_, err = s.Load(ctx, "z")
			assert.True(t, errors.Is(err, dao.ErrNotFound))

			owned, err := s.List(ctx, dao.NewParameter("Owner", "x"))
			require.NoError(t, err)
			require.Len(t, owned, 2)
			assert.Equal(t, "a", owned[0].ID)
			assert.Equal(t, "c", owned[1].ID)

			require.NoError(t, s.Delete(ctx, "a"))
			assert.True(t, errors.Is(s.Delete(ctx, "a"), dao.ErrNotFound))
			all, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}
