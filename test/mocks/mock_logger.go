package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger implements logger.Logger on top of testify's mock.
type MockLogger struct {
	mock.Mock
}

// NewMockLogger returns a MockLogger that accepts every call, so tests only
// need to assert the messages they care about.
func NewMockLogger() *MockLogger {
	m := &MockLogger{}
	for _, level := range []string{"Debug", "Info", "Warn", "Error", "Fatal"} {
		m.On(level, mock.Anything, mock.Anything).Maybe()
	}
	return m
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Fatal(format string, args ...any) {
	m.Called(format, args)
}
