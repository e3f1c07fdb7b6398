package identity

import (
	"context"
)

// MockProvider implements Provider for testing. It resolves any credential
// present in Users and rejects everything else.
type MockProvider struct {
	// Users maps credential -> user.
	Users map[string]User
}

// Compile-time check to ensure MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) CurrentUser(_ context.Context, credential string) (*User, error) {
	if u, ok := m.Users[credential]; ok {
		return &u, nil
	}
	return nil, ErrUnauthenticated
}
