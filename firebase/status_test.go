package firebase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/daily-pulse/session"
)

type proberFunc func(ctx context.Context) error

func (f proberFunc) Probe(ctx context.Context) error { return f(ctx) }

func ok() Prober { return proberFunc(func(context.Context) error { return nil }) }
func failing(err error) Prober { return proberFunc(func(context.Context) error { return err }) }

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name string
		auth Prober
		docs Prober
		want Status
	}{
		{
			name: "all good",
			auth: ok(), docs: ok(),
			want: Status{IsConnected: true, AuthEnabled: true, FirestoreEnabled: true},
		},
		{
			name: "auth provider disabled",
			auth: failing(&session.IdentityError{Code: "auth/operation-not-allowed"}), docs: ok(),
			want: Status{IsConnected: true, FirestoreEnabled: true, Error: "Email/password accounts are not enabled. Please contact support."},
		},
		{
			name: "network down",
			auth: failing(&session.IdentityError{Code: "auth/network-request-failed"}), docs: failing(errors.New("dial tcp")),
			want: Status{Error: "Network error. Please check your internet connection and try again."},
		},
		{
			name: "firestore misconfigured",
			auth: ok(), docs: failing(errors.New("404")),
			want: Status{IsConnected: true, AuthEnabled: true, Error: "Firestore not properly configured"},
		},
		{
			name: "no document probe",
			auth: ok(), docs: nil,
			want: Status{IsConnected: true, AuthEnabled: true, Error: "Firestore not properly configured"},
		},
		{
			name: "no auth",
			auth: nil, docs: ok(),
			want: Status{IsConnected: true, FirestoreEnabled: true, Error: "Authentication not properly configured"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckStatus(context.Background(), tt.auth, tt.docs))
		})
	}
}
