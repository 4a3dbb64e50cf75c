package domain

import (
	"fmt"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// Credentials holds upstream API keys. The zero value means "no keys".
type Credentials struct {
	BinanceKey      string `yaml:"binance_key"`
	CoinAPIKey      string `yaml:"coinapi_key"`
	CoinWatchKey    string `yaml:"livecoinwatch_key"`
	AlphaVantageKey string `yaml:"alphavantage_key"`
}

// IsZero reports whether no key is set
func (c Credentials) IsZero() bool {
	return c.BinanceKey == "" && c.CoinAPIKey == "" && c.CoinWatchKey == "" && c.AlphaVantageKey == ""
}

// Merge fills empty keys of c from fallback
func (c Credentials) Merge(fallback Credentials) Credentials {
	if c.BinanceKey == "" {
		c.BinanceKey = fallback.BinanceKey
	}
	if c.CoinAPIKey == "" {
		c.CoinAPIKey = fallback.CoinAPIKey
	}
	if c.CoinWatchKey == "" {
		c.CoinWatchKey = fallback.CoinWatchKey
	}
	if c.AlphaVantageKey == "" {
		c.AlphaVantageKey = fallback.AlphaVantageKey
	}
	return c
}

// String never prints key material
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{binance:%s coinapi:%s livecoinwatch:%s alphavantage:%s}",
		mask(c.BinanceKey), mask(c.CoinAPIKey), mask(c.CoinWatchKey), mask(c.AlphaVantageKey))
}

// GoString keeps %#v from leaking keys
func (c Credentials) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("binance", mask(c.BinanceKey)),
		slog.String("coinapi", mask(c.CoinAPIKey)),
		slog.String("livecoinwatch", mask(c.CoinWatchKey)),
		slog.String("alphavantage", mask(c.AlphaVantageKey)),
	)
}

func mask(key string) string {
	if key == "" {
		return "<unset>"
	}
	return redacted
}

// PolicyKind enumerates credential policies
type PolicyKind int

const (
	PolicyStateless PolicyKind = iota
	PolicyClientHeld
	PolicyPerCall
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyStateless:
		return "stateless"
	case PolicyClientHeld:
		return "client_held"
	case PolicyPerCall:
		return "per_call"
	default:
		return "unknown"
	}
}

// Policy decides how credentials reach the core. Exactly one kind applies per client.
type Policy struct {
	kind  PolicyKind
	creds Credentials
}

// Stateless forwards no credentials
func Stateless() Policy {
	return Policy{kind: PolicyStateless}
}

// ClientHeld forwards creds on every call
func ClientHeld(creds Credentials) Policy {
	return Policy{kind: PolicyClientHeld, creds: creds}
}

// PerCall requires the caller to pass credentials on every call
func PerCall() Policy {
	return Policy{kind: PolicyPerCall}
}

// ParsePolicy builds a policy from its config name
func ParsePolicy(name string, creds Credentials) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "stateless":
		return Stateless(), nil
	case "client_held", "client-held", "client":
		return ClientHeld(creds), nil
	case "per_call", "per-call", "percall":
		return PerCall(), nil
	default:
		return Policy{}, fmt.Errorf("unknown credential policy %q", name)
	}
}

// Kind returns the policy variant
func (p Policy) Kind() PolicyKind {
	return p.kind
}

// Credentials returns the stored keys; empty unless ClientHeld
func (p Policy) Credentials() Credentials {
	return p.creds
}

// Validate checks the variant is well formed
func (p Policy) Validate() error {
	switch p.kind {
	case PolicyStateless, PolicyPerCall:
		return nil
	case PolicyClientHeld:
		if p.creds.IsZero() {
			return ErrMissingCredentials
		}
		return nil
	default:
		return fmt.Errorf("unknown credential policy kind %d", p.kind)
	}
}

// Resolve returns the credentials to forward for one call.
// perCall is nil when the caller supplied none.
func (p Policy) Resolve(perCall *Credentials) (Credentials, error) {
	switch p.kind {
	case PolicyStateless:
		if perCall != nil {
			return Credentials{}, ErrPolicyViolation
		}
		return Credentials{}, nil
	case PolicyClientHeld:
		if perCall != nil {
			return Credentials{}, ErrPolicyViolation
		}
		return p.creds, nil
	case PolicyPerCall:
		if perCall == nil || perCall.IsZero() {
			return Credentials{}, ErrCredentialsRequired
		}
		return *perCall, nil
	default:
		return Credentials{}, fmt.Errorf("unknown credential policy kind %d", p.kind)
	}
}

func (p Policy) String() string {
	return p.kind.String()
}
