package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestEmailNotifier_SkipsWithoutAddress(t *testing.T) {
	sent := false
	n := &EmailNotifier{send: func(*gomail.Message) error { sent = true; return nil }}

	require.NoError(t, n.Notify(context.Background(), Message{UserID: "p1"}))
	assert.False(t, sent)
}

func TestEmailNotifier_BuildsMessage(t *testing.T) {
	var got *gomail.Message
	n := &EmailNotifier{
		cfg:  EmailConfig{FromEmail: "noreply@pharmacy.test", FromName: "Pharmacy"},
		send: func(m *gomail.Message) error { got = m; return nil },
	}

	err := n.Notify(context.Background(), Message{UserID: "p1", Email: "p1@example.com", Title: "Order accepted", Body: "Your offer was accepted"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"p1@example.com"}, got.GetHeader("To"))
	assert.Equal(t, []string{"Order accepted"}, got.GetHeader("Subject"))
}

func TestEmailNotifier_WrapsSendError(t *testing.T) {
	n := &EmailNotifier{send: func(*gomail.Message) error { return errors.New("smtp down") }}

	err := n.Notify(context.Background(), Message{Email: "p1@example.com", Title: "t"})
	assert.ErrorContains(t, err, "smtp down")
}
