package collector

import "CSEAnalyzer/internal/model"

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Closes  map[string][]float64
	Volumes map[string][]float64
	Err     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(symbol string, days int) (model.PriceHistory, error) {
	if m.Err != nil {
		return model.PriceHistory{}, m.Err
	}
	if c, ok := m.Closes[symbol]; ok {
		return trim(model.PriceHistory{Closes: c, Volumes: m.Volumes[symbol]}, days), nil
	}
	return model.PriceHistory{Closes: generateMockCloses(m.Price, days)}, nil
}

func generateMockCloses(basePrice float64, count int) []float64 {
	closes := make([]float64, count)
	for i := 0; i < count; i++ {
		closes[i] = basePrice * (1 + float64(i-count/2)*0.001)
	}
	return closes
}
