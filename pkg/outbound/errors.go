package outbound

import "fmt"

// TransportError indica falha de rede ou status HTTP fora de 2xx.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int // 0 quando a resposta nem chegou
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("falha na conexão com %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s retornou status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
