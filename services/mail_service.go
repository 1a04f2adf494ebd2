package services

import (
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/models"
)

// OrderNotification is the summary emailed to the sales address when a paid
// order lands.
type OrderNotification struct {
	OrderID        uint
	CustomerName   string
	CustomerEmail  string
	DeliveryMethod string
	Address        models.AddressSnapshot
	Lines          []models.OrderLine
	TotalCents     int64
}

// MailService dispatches best-effort notifications. Failures are logged by
// callers and never affect order correctness.
type MailService interface {
	SendOrderNotification(notification OrderNotification) error
}

// SMTPMailService implements MailService over SMTP.
type SMTPMailService struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	salesEmail string
}

var mailServiceInstance MailService

// InitMailService initializes the SMTP mail service from configuration.
func InitMailService(cfg *config.Config) MailService {
	mailServiceInstance = &SMTPMailService{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		username:   strings.TrimSpace(cfg.SMTPUser),
		password:   strings.TrimSpace(cfg.SMTPPass),
		from:       strings.TrimSpace(cfg.SMTPUser),
		salesEmail: cfg.SalesEmail,
	}
	return mailServiceInstance
}

// GetMailService returns the initialized mail service instance
func GetMailService() MailService {
	return mailServiceInstance
}

// SetMailService sets the mail service instance (primarily for testing)
func SetMailService(service MailService) {
	mailServiceInstance = service
}

// SendOrderNotification emails the order summary to the sales address.
func (s *SMTPMailService) SendOrderNotification(n OrderNotification) error {
	if s.salesEmail == "" {
		return fmt.Errorf("no sales email configured")
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat("Pet Market", s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(s.salesEmail); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("New Order #%d", n.OrderID))
	msg.SetBodyString(mail.TypeTextHTML, renderOrderNotification(n))

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send order notification: %w", err)
	}

	return nil
}

// renderOrderNotification formats the order summary as HTML. Pence are only
// converted to pounds here, at the presentation boundary.
func renderOrderNotification(n OrderNotification) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h1>New Paid Order #%d</h1>", n.OrderID)
	fmt.Fprintf(&b, "<p><b>Customer:</b> %s (%s)</p>", n.CustomerName, n.CustomerEmail)
	fmt.Fprintf(&b, "<p><b>Delivery:</b> %s</p>", n.DeliveryMethod)
	fmt.Fprintf(&b, "<p><b>Address:</b><br>%s<br>%s, %s<br>%s</p>",
		n.Address.AddressLine1, n.Address.City, n.Address.Postcode, n.Address.Country)

	b.WriteString("<h2>Items</h2><ul>")
	for _, line := range n.Lines {
		fmt.Fprintf(&b, "<li>%d × %s — £%.2f</li>", line.Qty, line.Name, float64(line.PriceCents)/100)
	}
	b.WriteString("</ul>")

	fmt.Fprintf(&b, "<p><b>Total:</b> £%.2f</p>", float64(n.TotalCents)/100)

	return b.String()
}
