package apimodel_test

import (
	"testing"

	"github.com/jrsteele09/viteviteapp/apimodel"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidateLoginRequest(t *testing.T) {
	require.NoError(t, apimodel.Validate(apimodel.LoginRequest{Email: "a@b.com", Password: "x"}))

	err := apimodel.Validate(apimodel.LoginRequest{Email: "not-an-email"})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.Contains(t, err.Error(), "email failed email")
	require.Contains(t, err.Error(), "password failed required")
}

func TestValidateRegisterRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     apimodel.RegisterRequest
		wantErr bool
	}{
		{"minimal", apimodel.RegisterRequest{Email: "a@b.com", Password: "Password1"}, false},
		{"full", apimodel.RegisterRequest{Email: "a@b.com", Password: "Password1", FullName: "Awa", Phone: "+221770000000", Role: "admin"}, false},
		{"short password", apimodel.RegisterRequest{Email: "a@b.com", Password: "short"}, true},
		{"unknown role", apimodel.RegisterRequest{Email: "a@b.com", Password: "Password1", Role: "root"}, true},
		{"short phone", apimodel.RegisterRequest{Email: "a@b.com", Password: "Password1", Phone: "12"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apimodel.Validate(tt.req)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTicketStatusTerminal(t *testing.T) {
	require.False(t, apimodel.TicketWaiting.Terminal())
	require.False(t, apimodel.TicketCalled.Terminal())
	require.True(t, apimodel.TicketServed.Terminal())
	require.True(t, apimodel.TicketCancelled.Terminal())
	require.True(t, apimodel.TicketExpired.Terminal())
}
