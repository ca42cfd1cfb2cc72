package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/dao"
)

func TestRegistry(t *testing.T) {
	fsRegistry, err := New(VendorFS, t.TempDir())
	require.NoError(t, err)
	memRegistry, err := New(VendorMemory, "")
	require.NoError(t, err)
	_, err = New("redis", "")
	assert.Error(t, err)

	for name, registry := range map[string]*Registry{"fs": fsRegistry, "memory": memRegistry} {
		ctx := context.Background()
		root := model.NewRootContext("E1", "C1")
		require.NoError(t, registry.Evaluators.Save(ctx, &model.EvaluatorRecord{ID: "E1", State: model.StateBound}), name)
		require.NoError(t, registry.Evaluators.Save(ctx, &model.EvaluatorRecord{ID: "E2", State: model.StateClosed}), name)
		require.NoError(t, registry.Contexts.Save(ctx, root), name)
		require.NoError(t, registry.Tasks.Save(ctx, model.NewTask("T1", root)), name)

		bound, err := registry.Evaluators.List(ctx, dao.NewParameter(dao.ParamState, string(model.StateBound)))
		require.NoError(t, err, name)
		require.Len(t, bound, 1, name)
		assert.Equal(t, "E1", bound[0].ID, name)

		tasks, err := registry.Tasks.List(ctx, dao.NewParameter(dao.ParamEvaluatorID, "E1"))
		require.NoError(t, err, name)
		require.Len(t, tasks, 1, name)
		assert.Equal(t, "C1", tasks[0].ContextID, name)

		contexts, err := registry.Contexts.List(ctx, dao.NewParameter(dao.ParamEvaluatorID, "E2"))
		require.NoError(t, err, name)
		assert.Empty(t, contexts, name)

		shared := model.NewRootContext("E2", "C1")
		require.NoError(t, registry.Contexts.Save(ctx, shared), name)
		require.NoError(t, registry.Tasks.Save(ctx, model.NewTask("T1", shared)), name)
		all, err := registry.Tasks.List(ctx)
		require.NoError(t, err, name)
		assert.Len(t, all, 2, name)
		require.NoError(t, registry.Contexts.Delete(ctx, root.Key()), name)
		loaded, err := registry.Contexts.Load(ctx, model.NewScopedID("E2", "C1"))
		require.NoError(t, err, name)
		assert.Equal(t, "E2", loaded.EvaluatorID, name)
		task, err := registry.Tasks.Load(ctx, model.NewScopedID("E1", "T1"))
		require.NoError(t, err, name)
		assert.Equal(t, "E1", task.EvaluatorID, name)
	}
}
