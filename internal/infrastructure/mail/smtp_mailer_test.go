package mail

import (
	"context"
	"testing"

	infraconfig "github.com/fabmate/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSMTPMailer(t *testing.T) {
	t.Run("requires configuration", func(t *testing.T) {
		_, err := NewSMTPMailer(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mail configuration is required")
	})

	t.Run("requires host", func(t *testing.T) {
		_, err := NewSMTPMailer(&infraconfig.MailConfig{Port: 587})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mail host is required")
	})

	t.Run("applies options", func(t *testing.T) {
		m, err := NewSMTPMailer(
			&infraconfig.MailConfig{Host: "smtp.local", Port: 587, From: "noreply@fabmate.local"},
			WithInviteBaseURL("https://app.fabmate.local"),
			WithMailerLogger(zap.NewNop()),
		)
		require.NoError(t, err)
		assert.Equal(t, "https://app.fabmate.local", m.baseURL)
	})
}

func TestInvitationBody(t *testing.T) {
	t.Run("includes company, role and link", func(t *testing.T) {
		body := invitationBody("Acme Fabrication", "member", "https://app.local/invitations/accept?token=abc")
		assert.Contains(t, body, "Acme Fabrication")
		assert.Contains(t, body, "member")
		assert.Contains(t, body, "https://app.local/invitations/accept?token=abc")
	})

	t.Run("escapes html in company name", func(t *testing.T) {
		body := invitationBody("<script>alert(1)</script>", "admin", "https://app.local")
		assert.NotContains(t, body, "<script>")
		assert.Contains(t, body, "&lt;script&gt;")
	})
}

func TestNoopMailer_SendInvitation(t *testing.T) {
	m := NewNoopMailer(nil)
	err := m.SendInvitation(context.Background(), "user@example.com", "token", "Acme", "member")
	require.NoError(t, err)
}
