package metadomain

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifica uma falha remota para decidir entre retry e abortar.
type FailureKind string

const (
	// FailureTransient é elegível para retry: timeout, 5xx ou sinal de
	// rate limit vindo da API remota.
	FailureTransient FailureKind = "transient"
	// FailurePermanent não é retentada: 4xx (exceto rate limit) e
	// requisições malformadas.
	FailurePermanent FailureKind = "permanent"
	// FailureQuota indica orçamento horário local esgotado. Não é retentada:
	// o bucket só enche com o tempo, repetir apenas queimaria tentativas.
	FailureQuota FailureKind = "quota"
	// FailureAuth indica token inválido ou expirado.
	FailureAuth FailureKind = "auth"
)

// RemoteError carrega a classificação de uma falha de chamada remota como
// valor, para que o orquestrador decida continuar ou abortar a subárvore sem
// depender de desvio de pilha.
type RemoteError struct {
	Kind       FailureKind
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("erro remoto (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("erro remoto (%s): %s", e.Kind, e.Message)
}

// Retryable informa se a falha é elegível para retry dentro do cliente.
func (e *RemoteError) Retryable() bool {
	return e.Kind == FailureTransient
}

// KindOf extrai a classificação de um erro; erros desconhecidos são tratados
// como transitórios (falhas de rede sem resposta).
func KindOf(err error) FailureKind {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind
	}
	return FailureTransient
}

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTokenExpired verifica se o erro é de token inválido ou expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// IsRateLimited verifica se o erro é o sinal de rate limit da API do Meta
func (e *ErrorResponse) IsRateLimited() bool {
	// Códigos 4, 17, 32 e 613 indicam limite de chamadas atingido
	return e.Error.Code == 4 || e.Error.Code == 17 || e.Error.Code == 32 || e.Error.Code == 613
}

// Classify mapeia o status HTTP e o corpo de erro do Meta para um
// FailureKind.
func Classify(statusCode int, errResp *ErrorResponse) FailureKind {
	if errResp != nil {
		if errResp.IsTokenExpired() {
			return FailureAuth
		}
		if errResp.IsRateLimited() {
			return FailureTransient
		}
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return FailureTransient
	case statusCode >= http.StatusInternalServerError:
		return FailureTransient
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return FailureAuth
	case statusCode >= http.StatusBadRequest:
		return FailurePermanent
	default:
		return FailureTransient
	}
}
