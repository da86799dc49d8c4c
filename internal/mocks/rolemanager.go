package mocks

import (
	"fmt"
)

// MockRoleManager is a mock implementation of verify.RoleManager
type MockRoleManager struct {
	Roled       map[int64]bool
	FailGrant   map[int64]bool
	HasCalls    map[int64]int
	GrantCalls  []int64
}

func NewMockRoleManager() *MockRoleManager {
	return &MockRoleManager{
		Roled:     make(map[int64]bool),
		FailGrant: make(map[int64]bool),
		HasCalls:  make(map[int64]int),
	}
}

func (m *MockRoleManager) HasVerifiedRole(userID int64) bool {
	m.HasCalls[userID]++
	return m.Roled[userID]
}

func (m *MockRoleManager) GrantVerifiedRole(userID int64) error {
	m.GrantCalls = append(m.GrantCalls, userID)
	if m.FailGrant[userID] {
		return fmt.Errorf("user %d not found in any guild", userID)
	}
	m.Roled[userID] = true
	return nil
}
