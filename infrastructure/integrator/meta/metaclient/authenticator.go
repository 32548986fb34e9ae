package metaclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/lfvieira/ads-sync-api/internal/config"

	metadomain "github.com/lfvieira/ads-sync-api/infrastructure/integrator/meta/domain"
)

// Authenticator guarda as credenciais da aplicação e reporta se o token de
// acesso atual é utilizável. Não renova token: um token inválido é condição
// fatal para qualquer operação que dependa dele.
type Authenticator struct {
	cfg *config.Config
}

func NewAuthenticator(cfg *config.Config) *Authenticator {
	return &Authenticator{
		cfg: cfg,
	}
}

// appToken retorna o access_token composto app_id|app_secret usado pelo
// endpoint de debug de token.
func (a *Authenticator) appToken() string {
	return fmt.Sprintf("%s|%s", a.cfg.Meta.AppID, a.cfg.Meta.AppSecret)
}

// AuthenticationStatus valida o formato do token e, quando um executor é
// fornecido, emite uma sondagem leve contra debug_token. A sondagem passa pelo
// cliente limitado para não furar o orçamento de chamadas.
func (a *Authenticator) AuthenticationStatus(ctx context.Context, exec Executor) metadomain.AuthStatus {
	if a.cfg.Meta.AppID == "" || a.cfg.Meta.AppSecret == "" {
		return metadomain.AuthStatus{
			IsAuthenticated: false,
			HasValidToken:   false,
			Message:         "credenciais da aplicação não configuradas",
		}
	}

	token := a.cfg.Meta.AccessToken
	if token == "" {
		return metadomain.AuthStatus{
			IsAuthenticated: false,
			HasValidToken:   false,
			Message:         "token de acesso ausente",
		}
	}

	if !tokenShapeValid(token) {
		return metadomain.AuthStatus{
			IsAuthenticated: true,
			HasValidToken:   false,
			Message:         "token de acesso com formato inválido",
		}
	}

	if exec == nil {
		return metadomain.AuthStatus{
			IsAuthenticated: true,
			HasValidToken:   true,
			Message:         "token com formato válido (sem verificação remota)",
		}
	}

	return a.probeToken(ctx, exec, token)
}

// probeToken consulta o endpoint debug_token para confirmar a validade do
// token junto à API.
func (a *Authenticator) probeToken(ctx context.Context, exec Executor, token string) metadomain.AuthStatus {
	url := fmt.Sprintf("%s/debug_token?input_token=%s&access_token=%s", a.cfg.Meta.URL, token, a.appToken())

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return metadomain.AuthStatus{
			IsAuthenticated: true,
			HasValidToken:   false,
			Message:         fmt.Sprintf("erro ao criar a requisição de sondagem: %v", err),
		}
	}

	resp, err := exec.Execute(ctx, req)
	if err != nil {
		return metadomain.AuthStatus{
			IsAuthenticated: true,
			HasValidToken:   false,
			Message:         fmt.Sprintf("falha ao validar token: %v", err),
		}
	}

	var debugResp struct {
		Data struct {
			IsValid   bool  `json:"is_valid"`
			ExpiresAt int64 `json:"expires_at"`
		} `json:"data"`
	}
	if err := jsoniter.Unmarshal(resp.Body, &debugResp); err != nil {
		return metadomain.AuthStatus{
			IsAuthenticated: true,
			HasValidToken:   false,
			Message:         fmt.Sprintf("erro ao decodificar resposta do debug_token: %v", err),
		}
	}

	if !debugResp.Data.IsValid {
		return metadomain.AuthStatus{
			IsAuthenticated: true,
			HasValidToken:   false,
			Message:         "token inválido ou expirado segundo a API",
		}
	}

	return metadomain.AuthStatus{
		IsAuthenticated: true,
		HasValidToken:   true,
		Message:         "token válido",
	}
}

// tokenShapeValid aplica uma validação barata de formato antes de qualquer
// chamada remota.
func tokenShapeValid(token string) bool {
	return len(token) >= 20 && !strings.ContainsAny(token, " \t\n")
}
