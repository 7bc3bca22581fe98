package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"
)

// Service renders templates and hands messages to a Transport. Queue
// sends asynchronously through a bounded queue; SendSync blocks.
type Service struct {
	transport Transport
	base      *template.Template
	templates map[string]*template.Template
	queue     chan *queuedEmail
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type queuedEmail struct {
	to       string
	toName   string
	replyTo  string
	subject  string
	template string
	data     interface{}
}

// NewService creates email service
func NewService(transport Transport) *Service {
	s := &Service{
		transport: transport,
		base:      template.Must(template.New("base").Parse(baseTemplate)),
		templates: make(map[string]*template.Template),
		queue:     make(chan *queuedEmail, 100),
	}

	for name, content := range map[string]string{
		TemplateContactNotification: contactNotificationTemplate,
		TemplateBookingReceived:     bookingReceivedTemplate,
		TemplateBookingConfirmed:    bookingConfirmedTemplate,
		TemplateBookingCancelled:    bookingCancelledTemplate,
	} {
		s.templates[name] = template.Must(template.New(name).Parse(content))
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

// NewFromConfig picks SendGrid when an API key is present and logs
// messages otherwise
func NewFromConfig(cfg SendGridConfig) *Service {
	if cfg.APIKey == "" {
		log.Warn().Msg("SendGrid API key not configured, emails will only be logged")
		return NewService(LogTransport{})
	}
	return NewService(NewSendGridClient(cfg))
}

func (s *Service) worker() {
	defer s.wg.Done()

	for e := range s.queue {
		if err := s.send(context.Background(), e); err != nil {
			log.Error().Err(err).
				Str("to", e.to).
				Str("template", e.template).
				Msg("Failed to send email")
		}
	}
}

// Render renders a named template inside the base layout
func (s *Service) Render(templateName string, data interface{}) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("email template %q not found", templateName)
	}

	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", fmt.Errorf("render %s: %w", templateName, err)
	}

	var html bytes.Buffer
	if err := s.base.Execute(&html, map[string]interface{}{
		"Content": template.HTML(content.String()),
	}); err != nil {
		return "", fmt.Errorf("render base: %w", err)
	}
	return html.String(), nil
}

func (s *Service) send(ctx context.Context, e *queuedEmail) error {
	html, err := s.Render(e.template, e.data)
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, &Message{
		To:          e.to,
		ToName:      e.toName,
		ReplyTo:     e.replyTo,
		Subject:     e.subject,
		HTMLContent: html,
	})
}

// Queue adds an email to the async send queue, dropping it when full
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &queuedEmail{to: to, toName: toName, subject: subject, template: templateName, data: data}:
	default:
		log.Warn().Str("to", to).Str("template", templateName).Msg("Email queue full, dropping email")
	}
}

// SendSync renders and sends an email synchronously
func (s *Service) SendSync(ctx context.Context, to, toName, replyTo, templateName, subject string, data interface{}) error {
	return s.send(ctx, &queuedEmail{
		to:       to,
		toName:   toName,
		replyTo:  replyTo,
		subject:  subject,
		template: templateName,
		data:     data,
	})
}

// Close stops the worker after draining the queue
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
		s.wg.Wait()
	})
}
