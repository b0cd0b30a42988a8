package testutil

import (
	"context"
	"sync"

	"viewdeploy/internal/warehouse"
)

// MockView is the remote state of one view
type MockView struct {
	Query       string
	Description string
	Labels      map[string]string
	Schema      []warehouse.Field
}

// Call records one warehouse operation
type Call struct {
	Op   string
	View string
}

// MockWarehouse is an in-memory warehouse that records every call
type MockWarehouse struct {
	mu sync.Mutex

	Views    map[string]*MockView
	Calls    []Call
	Projects []string

	// Injected failures, keyed by "project.dataset.view"
	OpenError    error
	DeleteErrors map[string]error
	CreateErrors map[string]error
	UpdateErrors map[string]error

	Closed int
}

// NewMockWarehouse creates an empty mock warehouse
func NewMockWarehouse() *MockWarehouse {
	return &MockWarehouse{
		Views:        make(map[string]*MockView),
		DeleteErrors: make(map[string]error),
		CreateErrors: make(map[string]error),
		UpdateErrors: make(map[string]error),
	}
}

// Opener returns an opener handing out this warehouse
func (m *MockWarehouse) Opener() warehouse.Opener {
	return func(ctx context.Context, project string) (warehouse.Warehouse, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.Projects = append(m.Projects, project)
		if m.OpenError != nil {
			return nil, m.OpenError
		}
		return m, nil
	}
}

func (m *MockWarehouse) DeleteView(ctx context.Context, ref warehouse.ViewRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ref.String()
	m.Calls = append(m.Calls, Call{Op: "delete", View: key})

	if err, ok := m.DeleteErrors[key]; ok {
		return err
	}
	if _, ok := m.Views[key]; !ok {
		return warehouse.ErrViewNotFound
	}
	delete(m.Views, key)
	return nil
}

func (m *MockWarehouse) CreateView(ctx context.Context, ref warehouse.ViewRef, spec warehouse.ViewSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ref.String()
	m.Calls = append(m.Calls, Call{Op: "create", View: key})

	if err, ok := m.CreateErrors[key]; ok {
		return err
	}
	if _, ok := m.Views[key]; ok {
		return &AlreadyExistsError{View: key}
	}
	m.Views[key] = &MockView{
		Query:       spec.Query,
		Description: spec.Description,
		Labels:      spec.Labels,
	}
	return nil
}

func (m *MockWarehouse) UpdateSchema(ctx context.Context, ref warehouse.ViewRef, fields []warehouse.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ref.String()
	m.Calls = append(m.Calls, Call{Op: "update", View: key})

	if err, ok := m.UpdateErrors[key]; ok {
		return err
	}
	view, ok := m.Views[key]
	if !ok {
		return warehouse.ErrViewNotFound
	}
	view.Schema = append([]warehouse.Field(nil), fields...)
	return nil
}

func (m *MockWarehouse) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed++
	return nil
}

// Ops returns the recorded operations as "op view" strings
func (m *MockWarehouse) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		ops = append(ops, c.Op+" "+c.View)
	}
	return ops
}

// AlreadyExistsError is returned when creating a view that exists
type AlreadyExistsError struct {
	View string
}

func (e *AlreadyExistsError) Error() string {
	return "Already Exists: " + e.View
}
