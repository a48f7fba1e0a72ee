package service

import "testing"

func TestHealthPathFromURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"JWKS endpoint", "https://kc.clinic.lan/realms/clinic/protocol/openid-connect/certs", "/realms/clinic/protocol/openid-connect/certs"},
		{"без path", "http://clinic-api:8010", "/health"},
		{"корневой path", "http://clinic-api:8010/", "/health"},
		{"path liveness", "http://clinic-api:8010/health/live", "/health/live"},
		{"некорректный URL", "://bad", "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := healthPathFromURL(tt.input); got != tt.expected {
				t.Errorf("healthPathFromURL(%q) = %q, ожидается %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewDephealthService_NoDependencies(t *testing.T) {
	if _, err := NewDephealthService(DephealthOptions{ServiceID: "clinic-ui", Group: "clinic"}, testLogger()); err == nil {
		t.Error("NewDephealthService() без зависимостей должен вернуть ошибку")
	}
}
