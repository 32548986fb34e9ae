package metaclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/internal/config"
)

func newTestClient(t *testing.T, rl config.RateLimit) *RateLimitedClient {
	t.Helper()

	cfg := &config.Config{
		Meta: config.Meta{
			AppID:       "app-id",
			AppSecret:   "app-secret",
			AccessToken: "token-de-teste-com-tamanho-suficiente",
		},
		RateLimit: rl,
	}

	client := NewRateLimitedClient(cfg, NewAuthenticator(cfg))
	// Espera de retry vira no-op para o teste não dormir de verdade.
	client.sleep = func(time.Duration) {}
	return client
}

func mustRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestRateLimitedClient_Execute(t *testing.T) {
	t.Run("Resposta 200 retorna o corpo sem retry", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      3,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 2,
		})

		resp, err := client.Execute(context.Background(), mustRequest(t, server.URL))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("Falha transitória é retentada até suceder", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"message":"erro interno","code":1}}`))
				return
			}
			w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      3,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 2,
		})

		resp, err := client.Execute(context.Background(), mustRequest(t, server.URL))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Duas falhas e um sucesso: três tentativas, três requisições contadas.
		assert.Equal(t, int32(3), hits.Load())
		assert.Equal(t, int64(3), client.requestCount.Load())
	})

	t.Run("Falha transitória persistente esgota as tentativas", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      3,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 2,
		})

		_, err := client.Execute(context.Background(), mustRequest(t, server.URL))
		require.Error(t, err)
		assert.Equal(t, metadomain.FailureTransient, metadomain.KindOf(err))
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("Falha permanente retorna na primeira tentativa", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"parâmetro inválido","code":100}}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      3,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 2,
		})

		_, err := client.Execute(context.Background(), mustRequest(t, server.URL))
		require.Error(t, err)

		var remoteErr *metadomain.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, metadomain.FailurePermanent, remoteErr.Kind)
		assert.Equal(t, "parâmetro inválido", remoteErr.Message)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("Erro 401 é classificado como falha de autenticação", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"token expirado","code":190}}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      3,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 2,
		})

		_, err := client.Execute(context.Background(), mustRequest(t, server.URL))
		require.Error(t, err)
		assert.Equal(t, metadomain.FailureAuth, metadomain.KindOf(err))
	})

	t.Run("Orçamento horário esgotado falha rápido sem ir à rede", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    2,
			RetryAttempts:      3,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 2,
		})

		ctx := context.Background()
		for i := 0; i < 2; i++ {
			_, err := client.Execute(ctx, mustRequest(t, server.URL))
			require.NoError(t, err)
		}

		_, err := client.Execute(ctx, mustRequest(t, server.URL))
		require.Error(t, err)
		assert.Equal(t, metadomain.FailureQuota, metadomain.KindOf(err))

		// A terceira chamada nunca saiu para a rede nem entrou no contador.
		assert.Equal(t, int32(2), hits.Load())
		assert.Equal(t, int64(2), client.requestCount.Load())
	})

	t.Run("Orçamento esgotado continua esgotado dentro da janela de 60 minutos", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    2,
			RetryAttempts:      1,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 2,
		})

		base := time.Now()
		current := base
		client.budget.now = func() time.Time { return current }

		ctx := context.Background()
		for i := 0; i < 2; i++ {
			_, err := client.Execute(ctx, mustRequest(t, server.URL))
			require.NoError(t, err)
		}

		// Meia hora depois a janela ainda cobre as duas chamadas: nada é admitido.
		current = base.Add(30 * time.Minute)
		_, err := client.Execute(ctx, mustRequest(t, server.URL))
		require.Error(t, err)
		assert.Equal(t, metadomain.FailureQuota, metadomain.KindOf(err))
		assert.Equal(t, int32(2), hits.Load())

		// Passada uma hora da emissão, as chamadas saem da janela e o orçamento volta.
		current = base.Add(61 * time.Minute)
		_, err = client.Execute(ctx, mustRequest(t, server.URL))
		require.NoError(t, err)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("Pool de permissões limita chamadas simultâneas", func(t *testing.T) {
		const poolSize = 2

		var inFlight, peak atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := inFlight.Add(1)
			for {
				observed := peak.Load()
				if current <= observed || peak.CompareAndSwap(observed, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      1,
			RetryDelayMs:       1,
			MaxConcurrentCalls: poolSize,
		})

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := client.Execute(context.Background(), mustRequest(t, server.URL))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.LessOrEqual(t, peak.Load(), int32(poolSize))
		assert.Equal(t, int64(5), client.requestCount.Load())
	})

	t.Run("Contexto cancelado libera quem espera por permissão", func(t *testing.T) {
		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      1,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 1,
		})

		// Ocupa a única permissão.
		client.permits <- struct{}{}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Execute(ctx, mustRequest(t, "http://localhost:0"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRateLimitedClient_Status(t *testing.T) {
	t.Run("Sondagem remota confirma o token através do próprio cliente", func(t *testing.T) {
		var probes atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			probes.Add(1)
			assert.Contains(t, r.URL.Path, "debug_token")
			w.Write([]byte(`{"data":{"is_valid":true,"expires_at":4102444800}}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      1,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 3,
		})
		client.cfg.Meta.URL = server.URL

		status := client.Status(context.Background())

		assert.True(t, status.Auth.IsAuthenticated)
		assert.True(t, status.Auth.HasValidToken)
		assert.Equal(t, int32(1), probes.Load())

		// A sondagem consumiu uma permissão já devolvida e uma unidade do orçamento.
		assert.Equal(t, 3, status.AvailablePermits)
		assert.Equal(t, int64(1), status.RequestCount)
	})

	t.Run("Token rejeitado pela API aparece como inválido no status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"is_valid":false}}`))
		}))
		defer server.Close()

		client := newTestClient(t, config.RateLimit{
			RequestsPerHour:    100,
			RetryAttempts:      1,
			RetryDelayMs:       1,
			MaxConcurrentCalls: 3,
		})
		client.cfg.Meta.URL = server.URL

		status := client.Status(context.Background())

		assert.True(t, status.Auth.IsAuthenticated)
		assert.False(t, status.Auth.HasValidToken)
	})
}
