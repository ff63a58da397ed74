// Package sender реализует отправку почтовых уведомлений воронки:
// подтверждение покупки и подтверждение приёма партнёрской заявки.
// Сообщения приходят из очередей RabbitMQ.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geo-track/geotrack-home/internal/lib/sl"
	"github.com/geo-track/geotrack-home/internal/lib/smtp"
	"github.com/geo-track/geotrack-home/internal/models"
)

// SenderService потребляет события уведомлений и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendPurchaseConfirmation отправляет письмо с подтверждением покупки.
// Страница успешной оплаты обещает это письмо, поэтому событие
// публикуется на каждом завершённом оформлении, включая бесплатный план.
func (s *SenderService) SendPurchaseConfirmation(body []byte) error {
	var message models.PurchaseConfirmation
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "GeoTrack: your subscription is active"
	var bodyText string
	if message.Free {
		bodyText = fmt.Sprintf(
			"Hello, %s!\n\nYour free GeoTrack plan %q is now active.\n\nDownload the mobile app and start tracking your field team.",
			message.CompanyName, message.PlanName)
	} else {
		bodyText = fmt.Sprintf(
			"Hello, %s!\n\nYour GeoTrack plan %q (%s billing) is now active.\nAmount paid: INR %d.\nTransaction ID: %s — keep it for support requests.\n\nDownload the mobile app and start tracking your field team.",
			message.CompanyName, message.PlanName, message.BillingCycle,
			message.AmountTotal, message.TransactionID)
	}

	return s.sendEmail(to, subject, bodyText)
}

// SendPartnerAcknowledgement отправляет подтверждение приёма партнёрской
// заявки с обещанием ответа в течение 48 часов.
func (s *SenderService) SendPartnerAcknowledgement(body []byte) error {
	var message models.PartnerApplication
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "GeoTrack partner program: application received"
	bodyText := fmt.Sprintf(
		"Hello, %s!\n\nWe received the partner application from %s.\nOur team will contact you within 48 hours.",
		message.ContactPerson, message.CompanyName)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
