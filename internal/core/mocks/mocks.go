package mocks

import (
	"github.com/google/uuid"
	"github.com/lorrc/chat-relay-backend/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockRoomDirectory is a mock implementation of ports.RoomDirectory
type MockRoomDirectory struct {
	mock.Mock
}

func NewMockRoomDirectory() *MockRoomDirectory {
	return &MockRoomDirectory{}
}

func (m *MockRoomDirectory) Join(connID uuid.UUID, room domain.RoomKey) {
	m.Called(connID, room)
}

func (m *MockRoomDirectory) Leave(connID uuid.UUID, room domain.RoomKey) {
	m.Called(connID, room)
}

func (m *MockRoomDirectory) Broadcast(room domain.RoomKey, event domain.Event, exclude ...uuid.UUID) {
	m.Called(room, event, exclude)
}
