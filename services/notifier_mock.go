package services

import (
	"context"
	"errors"
	"sync"
)

// MockNotifier мок доставки сводок для тестирования
type MockNotifier struct {
	mu sync.Mutex

	ShouldFail bool

	Messages  []string
	Documents []string
}

var errMockNotifier = errors.New("mock notifier failure")

func (m *MockNotifier) SendMessage(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errMockNotifier
	}
	m.Messages = append(m.Messages, text)
	return nil
}

func (m *MockNotifier) SendDocument(_ context.Context, fileName string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errMockNotifier
	}
	m.Documents = append(m.Documents, fileName)
	return nil
}
