package metaclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/lfvieira/ads-sync-api/internal/config"
)

// Response é a resposta crua de uma chamada bem-sucedida.
type Response struct {
	StatusCode int
	Body       []byte
}

// Executor é o único ponto de saída para a API remota. Toda chamada, inclusive
// a sondagem de token, passa por ele para respeitar o orçamento de chamadas.
type Executor interface {
	Execute(ctx context.Context, req *http.Request) (*Response, error)
}

// RateLimitedClient limita chamadas simultâneas com um pool de permissões,
// aplica um orçamento horário por janela deslizante e retenta falhas
// transitórias com espera fixa e determinística.
type RateLimitedClient struct {
	cfg          *config.Config
	auth         *Authenticator
	httpClient   *http.Client
	permits      chan struct{}
	budget       *hourlyBudget
	requestCount atomic.Int64
	retryDelay   time.Duration
	sleep        func(time.Duration)
}

// hourlyBudget conta as tentativas emitidas na última hora. Uma tentativa só
// é admitida se, descartados os carimbos fora da janela deslizante, o total
// ainda estiver abaixo do orçamento — o orçamento nunca é ultrapassado dentro
// de nenhuma janela de 60 minutos.
type hourlyBudget struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func newHourlyBudget(limit int) *hourlyBudget {
	return &hourlyBudget{
		limit:  limit,
		window: time.Hour,
		now:    time.Now,
	}
}

// Allow registra a tentativa e responde se ela cabe no orçamento da janela.
func (b *hourlyBudget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := b.now().Add(-b.window)

	expired := 0
	for expired < len(b.stamps) && !b.stamps[expired].After(cutoff) {
		expired++
	}
	b.stamps = b.stamps[expired:]

	if len(b.stamps) >= b.limit {
		return false
	}

	b.stamps = append(b.stamps, b.now())
	return true
}

func NewRateLimitedClient(cfg *config.Config, auth *Authenticator) *RateLimitedClient {
	rl := cfg.RateLimit

	return &RateLimitedClient{
		cfg:  cfg,
		auth: auth,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		permits:    make(chan struct{}, rl.MaxConcurrentCalls),
		budget:     newHourlyBudget(rl.RequestsPerHour),
		retryDelay: time.Duration(rl.RetryDelayMs) * time.Millisecond,
		sleep:      time.Sleep,
	}
}

// Execute adquire uma permissão do pool (suspendendo o chamador quando todas
// estão em uso) e executa a requisição com até RetryAttempts tentativas.
// Falhas permanentes e de quota retornam imediatamente, sem retry.
func (c *RateLimitedClient) Execute(ctx context.Context, req *http.Request) (*Response, error) {
	select {
	case c.permits <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.permits }()

	attempts := c.cfg.RateLimit.RetryAttempts

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.sleep(c.retryDelay)
		}

		resp, err := c.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		var remoteErr *metadomain.RemoteError
		if errors.As(err, &remoteErr) && !remoteErr.Retryable() {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"url":      req.URL.Path,
			"attempt":  attempt,
			"attempts": attempts,
			"error":    err.Error(),
		}).Warn("Falha transitória na chamada à API do Meta")
	}

	return nil, lastErr
}

// attempt executa uma única tentativa. O contador de requisições incrementa
// uma vez por tentativa que de fato sai para a rede, nunca é zerado.
func (c *RateLimitedClient) attempt(ctx context.Context, req *http.Request) (*Response, error) {
	if !c.budget.Allow() {
		return nil, &metadomain.RemoteError{
			Kind:    metadomain.FailureQuota,
			Message: "orçamento horário de chamadas esgotado",
		}
	}

	c.requestCount.Add(1)

	resp, err := c.httpClient.Do(req.Clone(ctx))
	if err != nil {
		return nil, &metadomain.RemoteError{
			Kind:    metadomain.FailureTransient,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &metadomain.RemoteError{
			Kind:       metadomain.FailureTransient,
			StatusCode: resp.StatusCode,
			Message:    "erro ao ler resposta: " + err.Error(),
		}
	}

	if resp.StatusCode == http.StatusOK {
		return &Response{
			StatusCode: resp.StatusCode,
			Body:       body,
		}, nil
	}

	errResp := parseErrorResponse(body)

	message := string(body)
	if errResp != nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return nil, &metadomain.RemoteError{
		Kind:       metadomain.Classify(resp.StatusCode, errResp),
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// Status reporta o estado de autenticação e os contadores vivos do cliente.
// A sondagem remota do token passa pelo próprio cliente, consumindo uma
// permissão e uma unidade do orçamento como qualquer outra chamada.
func (c *RateLimitedClient) Status(ctx context.Context) metadomain.ClientStatus {
	return metadomain.ClientStatus{
		Auth:             c.auth.AuthenticationStatus(ctx, c),
		AvailablePermits: cap(c.permits) - len(c.permits),
		RequestCount:     c.requestCount.Load(),
	}
}

// parseErrorResponse tenta parsear um erro da API do Meta; retorna nil quando
// o corpo não é o JSON de erro esperado.
func parseErrorResponse(body []byte) *metadomain.ErrorResponse {
	var errorResp metadomain.ErrorResponse
	if err := jsoniter.Unmarshal(body, &errorResp); err != nil {
		return nil
	}
	if errorResp.Error.Code == 0 && errorResp.Error.Message == "" {
		return nil
	}
	return &errorResp
}
