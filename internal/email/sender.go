// Package email envía los correos transaccionales (bienvenida al registrarse).
package email

// Sender envía un email con contenido HTML y texto plano.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// Noop descarta los mensajes. Se usa cuando SMTP no está configurado.
type Noop struct{}

func (Noop) Send(string, string, string, string) error { return nil }
