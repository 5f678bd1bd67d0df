package bridge

import (
	"github.com/stretchr/testify/mock"
)

// --- Conn ---

type MockConn struct {
	mock.Mock
}

func (m *MockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

// --- StatusConn ---

type MockStatusConn struct {
	mock.Mock
}

func (m *MockStatusConn) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}
