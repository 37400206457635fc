package remote

import "fmt"

// API client kinds.
const (
	KindREST = "rest"
	KindSOAP = "soap"
	KindSim  = "sim"
)

// Config selects and configures a concrete client. Selection is explicit;
// nothing here sniffs the environment.
type Config struct {
	Kind     string
	BaseURL  string
	APIKey   string
	Username string
	Password string
}

// New builds a Client from explicit configuration.
func New(cfg Config) (Client, error) {
	switch cfg.Kind {
	case KindREST:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("remote: rest client requires a base URL")
		}
		return newRESTClient(cfg.BaseURL, cfg.APIKey), nil
	case KindSOAP:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("remote: soap client requires an endpoint URL")
		}
		return newSOAPClient(cfg.BaseURL, cfg.Username, cfg.Password), nil
	case KindSim:
		return NewSimClient(), nil
	default:
		return nil, fmt.Errorf("remote: unknown client kind %q", cfg.Kind)
	}
}
