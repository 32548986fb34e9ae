package metadomain

// AuthStatus reporta a usabilidade das credenciais configuradas.
type AuthStatus struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	HasValidToken   bool   `json:"has_valid_token"`
	Message         string `json:"message"`
}

// ClientStatus expõe os contadores vivos do cliente para health reporting.
type ClientStatus struct {
	Auth             AuthStatus `json:"auth"`
	AvailablePermits int        `json:"available_permits"`
	RequestCount     int64      `json:"request_count"`
}
