package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IBM/sarama"
)

type stubDB struct{ err error }

func (s *stubDB) Health() error { return s.err }

type stubRedisHealth struct{ err error }

func (s *stubRedisHealth) Health(ctx context.Context) error { return s.err }

func kafkaOK([]string) error { return nil }

func decodeHealth(t *testing.T, rr *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	return resp
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	h := NewHealthHandler(&stubDB{}, &stubRedisHealth{}, nil, kafkaOK)
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeHealth(t, rr)
	if resp.Status != "healthy" || len(resp.Services) != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHealthHandler_CriticalFailure(t *testing.T) {
	h := NewHealthHandler(&stubDB{}, &stubRedisHealth{err: errors.New("redis down")}, nil, kafkaOK)
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	resp := decodeHealth(t, rr)
	if resp.Status != "unhealthy" || resp.Services["redis"] != "unhealthy: redis down" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHealthHandler_NonCriticalFailureDegrades(t *testing.T) {
	h := NewHealthHandler(&stubDB{}, &stubRedisHealth{}, nil, kafkaOK).
		WithCheck("maps", false, func(context.Context) error { return errors.New("no api key") })

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for degraded, got %d", rr.Code)
	}
	if resp := decodeHealth(t, rr); resp.Status != "degraded" {
		t.Fatalf("expected degraded, got %+v", resp)
	}

	rr = httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("non-critical check must not fail readiness, got %d", rr.Code)
	}
}

func TestHealthHandler_ReadinessOK(t *testing.T) {
	h := NewHealthHandler(&stubDB{}, &stubRedisHealth{}, nil, kafkaOK)
	rr := httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestHealthHandler_ReadinessNamesFailedDependency(t *testing.T) {
	cases := []struct {
		name    string
		handler *HealthHandler
		message string
	}{
		{"db", NewHealthHandler(&stubDB{err: errors.New("db down")}, &stubRedisHealth{}, nil, kafkaOK), "database not ready"},
		{"kafka", NewHealthHandler(&stubDB{}, &stubRedisHealth{}, []string{"kafka:9092"}, func([]string) error { return errors.New("kafka down") }), "kafka not ready"},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		tc.handler.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", tc.name, rr.Code)
		}
		var resp Response
		_ = json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp.Message != tc.message {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.message, resp.Message)
		}
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(&stubDB{err: errors.New("db down")}, &stubRedisHealth{}, nil, kafkaOK)
	rr := httptest.NewRecorder()
	h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("liveness must not depend on dependencies, got %d", rr.Code)
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandler(&stubDB{}, &stubRedisHealth{}, nil, kafkaOK)
	for _, fn := range []http.HandlerFunc{h.Health, h.Readiness, h.Liveness} {
		rr := httptest.NewRecorder()
		fn(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rr.Code)
		}
	}
}

func TestCheckKafkaHealth_NoBrokers(t *testing.T) {
	if err := CheckKafkaHealth(nil); err == nil {
		t.Fatalf("expected error for empty brokers")
	}
}

func TestCheckKafkaHealth_WithMockBroker(t *testing.T) {
	broker := sarama.NewMockBroker(t, 1)
	defer broker.Close()

	broker.SetHandlerByMap(map[string]sarama.MockResponse{
		"MetadataRequest": sarama.NewMockMetadataResponse(t).
			SetBroker(broker.Addr(), broker.BrokerID()).
			SetController(broker.BrokerID()).
			SetLeader("fares", 0, broker.BrokerID()),
	})

	if err := CheckKafkaHealth([]string{broker.Addr()}); err != nil {
		t.Fatalf("expected kafka health ok, got %v", err)
	}
}
