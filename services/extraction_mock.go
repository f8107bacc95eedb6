package services

import (
	"context"
	"sync"
)

// MockExtractor мок распознавания для тестирования
// Реализует интерфейс VehicleExtractor
type MockExtractor struct {
	mu sync.Mutex

	// Данные для возврата
	Response ExtractedData

	// Если задан, ответ возвращается только после закрытия канала
	Gate chan struct{}

	// Счетчик и журнал вызовов
	CallCount int
	Images    [][]byte
}

// NewMockExtractor создает мок с заданным ответом
func NewMockExtractor(response ExtractedData) *MockExtractor {
	return &MockExtractor{Response: response}
}

func (m *MockExtractor) ExtractVehicleInfo(ctx context.Context, image []byte) ExtractedData {
	m.mu.Lock()
	m.CallCount++
	m.Images = append(m.Images, image)
	gate := m.Gate
	resp := m.Response
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ExtractedData{Reasoning: ExtractionFailureReasoning}
		}
	}
	return resp
}

// Calls возвращает количество вызовов
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
