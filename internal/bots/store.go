package bots

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
)

// DataStore is the clinical data store collaborator the bots read from and
// write to. *fhir.Client satisfies it; tests use MockStore.
type DataStore interface {
	ReadReference(ctx context.Context, ref string) (map[string]interface{}, error)
	Search(ctx context.Context, resourceType string, params url.Values) ([]map[string]interface{}, error)
	Create(ctx context.Context, resource map[string]interface{}) (map[string]interface{}, error)
}

// ---------------------------------------------------------------------------
// Mock DataStore (test double)
// ---------------------------------------------------------------------------

// SearchCall records a single call to Search.
type SearchCall struct {
	ResourceType string
	Params       url.Values
}

// MockStore is a test double for DataStore. Reads and searches are served
// from the configured maps; creates are recorded and echoed back with a
// generated id.
type MockStore struct {
	mu sync.Mutex

	// Resources served by ReadReference, keyed by relative reference.
	Resources map[string]map[string]interface{}
	// SearchResults served by Search, keyed by resource type.
	SearchResults map[string][]map[string]interface{}

	// Failure injection.
	ReadErr   error
	SearchErr error
	CreateErr error
	// CreateErrFor fails creates of a specific resourceType only.
	CreateErrFor map[string]error

	created     []map[string]interface{}
	searchCalls []SearchCall
	nextID      int
}

// ReadReference implements DataStore.
func (m *MockStore) ReadReference(_ context.Context, ref string) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	res, ok := m.Resources[ref]
	if !ok {
		return nil, errors.New("not found: " + ref)
	}
	return res, nil
}

// Search implements DataStore.
func (m *MockStore) Search(_ context.Context, resourceType string, params url.Values) ([]map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = append(m.searchCalls, SearchCall{ResourceType: resourceType, Params: params})
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResults[resourceType], nil
}

// Create implements DataStore.
func (m *MockStore) Create(_ context.Context, resource map[string]interface{}) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	resourceType, _ := resource["resourceType"].(string)
	if err, ok := m.CreateErrFor[resourceType]; ok && err != nil {
		return nil, err
	}

	m.nextID++
	created := make(map[string]interface{}, len(resource)+1)
	for k, v := range resource {
		created[k] = v
	}
	created["id"] = "mock-" + resourceType + "-" + strconv.Itoa(m.nextID)
	m.created = append(m.created, created)
	return created, nil
}

// Created returns a copy of all created resources, in order.
func (m *MockStore) Created() []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]interface{}, len(m.created))
	copy(out, m.created)
	return out
}

// CreatedOfType returns created resources filtered by resourceType.
func (m *MockStore) CreatedOfType(resourceType string) []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []map[string]interface{}
	for _, r := range m.created {
		if rt, _ := r["resourceType"].(string); rt == resourceType {
			out = append(out, r)
		}
	}
	return out
}

// SearchCalls returns a copy of recorded search calls.
func (m *MockStore) SearchCalls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SearchCall, len(m.searchCalls))
	copy(out, m.searchCalls)
	return out
}
