package sender

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/geo-track/geotrack-home/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
	written []byte
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	m.written = append(m.written, p...)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupHappySMTP(transport *MockTransport, rcpt string) *MockSMTPWriter {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("noreply@geotrack.in")
	transport.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "noreply@geotrack.in").Return(nil).Once()
	mockClient.On("Rcpt", rcpt).Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
	return mockWriter
}

func TestSendPurchaseConfirmation(t *testing.T) {
	paidBody := []byte(`{"email":"owner@acme.in","company_name":"Acme Distribution",` +
		`"plan_name":"Pro","billing_cycle":"quarterly","amount_total":254880,` +
		`"transaction_id":"txn_123","free":false}`)
	freeBody := []byte(`{"email":"owner@acme.in","company_name":"Acme Distribution",` +
		`"plan_name":"Free","billing_cycle":"monthly","amount_total":0,` +
		`"transaction_id":"txn_777","free":true}`)

	t.Run("платная покупка - письмо содержит сумму и идентификатор транзакции", func(t *testing.T) {
		transport := new(MockTransport)
		writer := setupHappySMTP(transport, "owner@acme.in")
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendPurchaseConfirmation(paidBody)

		assert.NoError(t, err)
		text := string(writer.written)
		assert.Contains(t, text, "To: owner@acme.in")
		assert.Contains(t, text, "Acme Distribution")
		assert.Contains(t, text, `"Pro" (quarterly billing)`)
		assert.Contains(t, text, "INR 254880")
		assert.Contains(t, text, "txn_123")
		transport.AssertExpectations(t)
	})

	t.Run("бесплатный тариф - письмо без суммы и транзакции", func(t *testing.T) {
		transport := new(MockTransport)
		writer := setupHappySMTP(transport, "owner@acme.in")
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendPurchaseConfirmation(freeBody)

		assert.NoError(t, err)
		text := string(writer.written)
		assert.Contains(t, text, `free GeoTrack plan "Free"`)
		assert.NotContains(t, text, "Amount paid")
		assert.NotContains(t, text, "txn_777")
		transport.AssertExpectations(t)
	})

	t.Run("некорректный JSON - транспорт не вызывается", func(t *testing.T) {
		transport := new(MockTransport)
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendPurchaseConfirmation([]byte(`not json`))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "error unmarshalling message")
		transport.AssertExpectations(t)
	})

	t.Run("ошибка подключения к SMTP", func(t *testing.T) {
		transport := new(MockTransport)
		transport.On("GetSMTPUser").Return("noreply@geotrack.in")
		transport.On("Connect").Return(nil, errors.New("connection error")).Once()
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendPurchaseConfirmation(paidBody)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection error")
		transport.AssertExpectations(t)
	})

	t.Run("ошибка MAIL FROM - клиент закрывается", func(t *testing.T) {
		transport := new(MockTransport)
		mockClient := new(MockSMTPClient)
		transport.On("GetSMTPUser").Return("noreply@geotrack.in")
		transport.On("Connect").Return(mockClient, nil).Once()
		mockClient.On("Mail", "noreply@geotrack.in").Return(errors.New("mail error")).Once()
		mockClient.On("Close").Return(nil).Once()
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendPurchaseConfirmation(paidBody)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "mail error")
		transport.AssertExpectations(t)
		mockClient.AssertExpectations(t)
	})
}

func TestSendPartnerAcknowledgement(t *testing.T) {
	body := []byte(`{"id":"app-1","company_name":"Acme Distribution",` +
		`"contact_person":"Priya","email":"priya@acme.in","phone":"+91 98765 43210",` +
		`"country":"India","city":"Pune","business_type":"reseller"}`)

	t.Run("заявка принята - письмо с обещанием ответа за 48 часов", func(t *testing.T) {
		transport := new(MockTransport)
		writer := setupHappySMTP(transport, "priya@acme.in")
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendPartnerAcknowledgement(body)

		assert.NoError(t, err)
		text := string(writer.written)
		assert.Contains(t, text, "Hello, Priya!")
		assert.Contains(t, text, "Acme Distribution")
		assert.Contains(t, text, "within 48 hours")
		transport.AssertExpectations(t)
	})

	t.Run("некорректный JSON - транспорт не вызывается", func(t *testing.T) {
		transport := new(MockTransport)
		service := NewSenderService(newNoopLogger(), transport)

		err := service.SendPartnerAcknowledgement([]byte(`{broken`))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "error unmarshalling message")
		transport.AssertExpectations(t)
	})
}
