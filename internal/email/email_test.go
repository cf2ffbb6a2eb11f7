package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	end := time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC)
	subject, html, text, err := Welcome(WelcomeVars{Name: "<Ana>", ClinicName: "Clínica Sol", TrialEndsAt: &end})
	require.NoError(t, err)

	assert.NotEmpty(t, subject)
	assert.Contains(t, html, "&lt;Ana&gt;")
	assert.Contains(t, html, "24/06/2024")
	assert.Contains(t, text, "Clínica Sol")
	assert.Contains(t, text, "24/06/2024")
}

func TestSMTPSender_Message(t *testing.T) {
	s := NewSMTPSender("smtp.local", 587, "no-reply@x.com", "", "", "")
	assert.Equal(t, "auto", s.TLSMode)

	m := s.message("a@x.com", "hola", "<p>hola</p>", "hola")
	assert.Equal(t, []string{"a@x.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"hola"}, m.GetHeader("Subject"))

	s.TLSMode = "ssl"
	assert.True(t, s.dialer().SSL)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Send("a@x.com", "s", "h", "t"))
}
