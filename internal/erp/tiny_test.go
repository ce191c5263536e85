package erp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.ERPConfig{
		BaseURL:        srv.URL,
		Token:          "test-token",
		TimeoutSeconds: 2,
	})
}

func TestGetVariationStock(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "test-token" {
			t.Errorf("token = %q, want test-token", got)
		}
		if got := r.URL.Query().Get("formato"); got != "json" {
			t.Errorf("formato = %q, want json", got)
		}
		if got := r.URL.Query().Get("id"); got != "12345" {
			t.Errorf("id = %q, want 12345", got)
		}
		w.Write([]byte(`{"retorno":{"status":"OK","produto":{"saldo":"14.0"}}}`))
	})

	qty, err := client.GetVariationStock(context.Background(), "12345")
	if err != nil {
		t.Fatalf("GetVariationStock: %v", err)
	}
	if qty != 14 {
		t.Errorf("qty = %d, want 14", qty)
	}
}

func TestGetVariationStockNegativeBalanceClampsToZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retorno":{"status":"OK","produto":{"saldo":"-3.0"}}}`))
	})

	qty, err := client.GetVariationStock(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetVariationStock: %v", err)
	}
	if qty != 0 {
		t.Errorf("qty = %d, want 0", qty)
	}
}

func TestGetVariationStockMissingBalanceIsZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retorno":{"status":"OK","produto":{}}}`))
	})

	qty, err := client.GetVariationStock(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetVariationStock: %v", err)
	}
	if qty != 0 {
		t.Errorf("qty = %d, want 0", qty)
	}
}

func TestGetVariationStockAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retorno":{"status":"Erro","codigo_erro":"20","erro":"token invalido"}}`))
	})

	_, err := client.GetVariationStock(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error for API error payload")
	}
}

func TestGetVariationStockServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetVariationStock(context.Background(), "1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGetVariationStockWithoutToken(t *testing.T) {
	client := NewClient(config.ERPConfig{BaseURL: "http://localhost"})
	if _, err := client.GetVariationStock(context.Background(), "1"); err == nil {
		t.Fatal("expected error when token is missing")
	}
}
