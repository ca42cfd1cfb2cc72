package registry

import (
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/dao"
	"github.com/viant/evalrt/service/dao/store"
)

// Vendor selects the registry backend
type Vendor string

const (
	VendorMemory Vendor = "memory"
	VendorFS     Vendor = "fs"
)

// Registry groups the driver side stores of evaluators, contexts and tasks.
// Contexts and tasks refer to their owners by identifier only and are keyed
// by evaluator scoped identifiers.
type Registry struct {
	Evaluators dao.Service[string, model.EvaluatorRecord]
	Contexts   dao.Service[model.ScopedID, model.Context]
	Tasks      dao.Service[model.ScopedID, model.Task]
}

var evaluatorEntity = store.Entity[string, model.EvaluatorRecord]{
	Key: func(r *model.EvaluatorRecord) string { return r.ID },
	Fields: func(r *model.EvaluatorRecord) map[string]string {
		return map[string]string{dao.ParamState: string(r.State), dao.ParamEvaluatorID: r.ID}
	},
	Clone: func(r *model.EvaluatorRecord) *model.EvaluatorRecord { return r.Clone() },
}

var contextEntity = store.Entity[model.ScopedID, model.Context]{
	Key: func(c *model.Context) model.ScopedID { return c.Key() },
	Fields: func(c *model.Context) map[string]string {
		return map[string]string{dao.ParamEvaluatorID: c.EvaluatorID, dao.ParamContextID: c.ID}
	},
	Clone: func(c *model.Context) *model.Context { return c.Clone() },
}

var taskEntity = store.Entity[model.ScopedID, model.Task]{
	Key: func(t *model.Task) model.ScopedID { return t.Key() },
	Fields: func(t *model.Task) map[string]string {
		return map[string]string{dao.ParamEvaluatorID: t.EvaluatorID, dao.ParamContextID: t.ContextID}
	},
	Clone: func(t *model.Task) *model.Task { return t.Clone() },
}

// NewMemory creates an in-memory registry
func NewMemory() *Registry {
	return &Registry{
		Evaluators: store.NewMemoryStore(evaluatorEntity),
		Contexts:   store.NewMemoryStore(contextEntity),
		Tasks:      store.NewMemoryStore(taskEntity),
	}
}

// NewFS creates a registry persisting records under baseURL
func NewFS(fs afs.Service, baseURL string) (*Registry, error) {
	evaluators, err := store.NewFSStore(fs, url.Join(baseURL, "evaluators"), evaluatorEntity)
	if err != nil {
		return nil, err
	}
	contexts, err := store.NewFSStore(fs, url.Join(baseURL, "contexts"), contextEntity)
	if err != nil {
		return nil, err
	}
	tasks, err := store.NewFSStore(fs, url.Join(baseURL, "tasks"), taskEntity)
	if err != nil {
		return nil, err
	}
	return &Registry{Evaluators: evaluators, Contexts: contexts, Tasks: tasks}, nil
}

// New creates a registry for the supplied vendor
func New(vendor Vendor, baseURL string) (*Registry, error) {
	switch vendor {
	case VendorMemory, "":
		return NewMemory(), nil
	case VendorFS:
		return NewFS(afs.New(), baseURL)
	}
	return nil, fmt.Errorf("unsupported registry vendor: %s", vendor)
}
