package domain_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_NeverPrinted(t *testing.T) {
	creds := domain.Credentials{BinanceKey: "binance-secret", CoinAPIKey: "coinapi-secret", AlphaVantageKey: "alpha-secret"}

	for _, s := range []string{
		creds.String(),
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%+v", creds),
		fmt.Sprintf("%#v", creds),
	} {
		assert.NotContains(t, s, "secret")
		assert.Contains(t, s, "[REDACTED]")
		assert.Contains(t, s, "<unset>")
	}

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("call", "credentials", creds)
	assert.NotContains(t, buf.String(), "secret")
}

func TestCredentials_Merge(t *testing.T) {
	call := domain.Credentials{BinanceKey: "mine"}
	defaults := domain.Credentials{BinanceKey: "default-b", CoinAPIKey: "default-c"}

	assert.Equal(t, domain.Credentials{BinanceKey: "mine", CoinAPIKey: "default-c"}, call.Merge(defaults))
	assert.True(t, domain.Credentials{}.IsZero())
	assert.False(t, call.IsZero())
	assert.False(t, domain.Credentials{AlphaVantageKey: "a"}.IsZero())
	assert.Equal(t, "a", domain.Credentials{}.Merge(domain.Credentials{AlphaVantageKey: "a"}).AlphaVantageKey)
}

func TestParsePolicy(t *testing.T) {
	creds := domain.Credentials{CoinAPIKey: "k"}

	tests := []struct {
		input string
		want  domain.PolicyKind
	}{
		{"", domain.PolicyStateless},
		{"stateless", domain.PolicyStateless},
		{"client_held", domain.PolicyClientHeld},
		{"Client-Held", domain.PolicyClientHeld},
		{"per_call", domain.PolicyPerCall},
		{"per-call", domain.PolicyPerCall},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := domain.ParsePolicy(tt.input, creds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Kind())
		})
	}

	_, err := domain.ParsePolicy("sometimes", creds)
	assert.Error(t, err)
}

func TestPolicy_Resolve(t *testing.T) {
	held := domain.Credentials{BinanceKey: "held"}
	call := domain.Credentials{BinanceKey: "call"}

	tests := []struct {
		name    string
		policy  domain.Policy
		perCall *domain.Credentials
		want    domain.Credentials
		wantErr error
	}{
		{"stateless without call keys", domain.Stateless(), nil, domain.Credentials{}, nil},
		{"stateless with call keys", domain.Stateless(), &call, domain.Credentials{}, domain.ErrPolicyViolation},
		{"client held", domain.ClientHeld(held), nil, held, nil},
		{"client held with call keys", domain.ClientHeld(held), &call, domain.Credentials{}, domain.ErrPolicyViolation},
		{"per call", domain.PerCall(), &call, call, nil},
		{"per call missing", domain.PerCall(), nil, domain.Credentials{}, domain.ErrCredentialsRequired},
		{"per call empty", domain.PerCall(), &domain.Credentials{}, domain.Credentials{}, domain.ErrCredentialsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.Resolve(tt.perCall)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, domain.Stateless().Validate())
	assert.NoError(t, domain.PerCall().Validate())
	assert.NoError(t, domain.ClientHeld(domain.Credentials{CoinWatchKey: "k"}).Validate())
	assert.ErrorIs(t, domain.ClientHeld(domain.Credentials{}).Validate(), domain.ErrMissingCredentials)
	assert.Equal(t, "client_held", domain.ClientHeld(domain.Credentials{}).String())
}

func TestInvocationError(t *testing.T) {
	err := domain.NewInvocationError(domain.OpGetOrderbook, domain.ErrRateLimited)

	assert.ErrorIs(t, err, domain.ErrInvocation)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.NotErrorIs(t, err, domain.ErrAuthentication)
	assert.True(t, domain.IsInvocationError(fmt.Errorf("wrapped: %w", err)))
	assert.Contains(t, err.Error(), "getOrderbook")
}
