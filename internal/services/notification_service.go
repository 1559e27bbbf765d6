package services

import (
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/utils"
)

const negotiationUpdateEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Negotiation Update</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; background-color: #f3f4f6; color: #1f2937; margin: 0; padding: 20px; }
  .container { max-width: 600px; margin: auto; background: #fff; border: 1px solid #e5e7eb; border-radius: 8px; }
  .header { background-color: #dcfce7; padding: 15px 20px; border-bottom: 1px solid #bbf7d0; }
  .header h1 { margin: 0; font-size: 20px; color: #166534; }
  .content { padding: 20px; }
  .content p { margin-top: 0; }
  ul { list-style: none; padding: 0; }
  li { padding: 8px; border-bottom: 1px solid #eee; }
  li:last-child { border-bottom: none; }
  strong { color: #111; }
  .button-container { text-align: center; margin: 20px 0; }
  .button {
    background-color: #16a34a;
    color: white !important;
    padding: 12px 25px;
    text-decoration: none;
    border-radius: 5px;
    font-weight: bold;
    display: inline-block;
  }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>%s</p>
      <ul>
        <li><strong>Property:</strong> %s</li>
        <li><strong>Address:</strong> %s</li>
        <li><strong>Details:</strong> %s</li>
        <li><strong>Timestamp (UTC):</strong> %s</li>
      </ul>
      <div class="button-container">
        <a href="%s" class="button">View Negotiation</a>
      </div>
    </div>
  </div>
</body>
</html>`

/*
NotificationService fans negotiation events out to the counterparty over
email (SendGrid) and SMS (Twilio). Delivery is best-effort: failures are
logged, never surfaced to the caller, and never block the mutation that
triggered them.
*/
type NotificationService struct {
	sgClient *sendgrid.Client
	twClient *twilio.RestClient

	fromEmail       string
	fromPhone       string
	sendgridSandbox bool
	appURL          string
}

func NewNotificationService(
	sgClient *sendgrid.Client,
	twClient *twilio.RestClient,
	fromEmail string,
	fromPhone string,
	sendgridSandbox bool,
	appURL string,
) *NotificationService {
	return &NotificationService{
		sgClient:        sgClient,
		twClient:        twClient,
		fromEmail:       fromEmail,
		fromPhone:       fromPhone,
		sendgridSandbox: sendgridSandbox,
		appURL:          appURL,
	}
}

// NotifyCounterOffer tells the counterparty a new counter-price landed.
func (s *NotificationService) NotifyCounterOffer(recipient *models.User, n *models.Negotiation, p *models.Property, amount float64) {
	subject := "New counter-offer on " + p.Title
	details := fmt.Sprintf("The other party countered with ₦%.2f (round %d of 3). You have 48 hours to respond.", amount, n.CounterCount)
	s.send(recipient, n, p, subject, "A counter-offer was submitted on your negotiation.", details)
}

// NotifyOfferAccepted tells the counterparty the offer (or LOI) was
// accepted and inspection scheduling has begun.
func (s *NotificationService) NotifyOfferAccepted(recipient *models.User, n *models.Negotiation, p *models.Property) {
	subject := "Offer accepted on " + p.Title
	details := fmt.Sprintf("Proposed inspection: %s at %s (property local time).",
		n.InspectionDate.Format("2006-01-02"), n.InspectionTime)
	s.send(recipient, n, p, subject, "Your negotiation moved to inspection scheduling.", details)
}

// NotifyLOIChangesRequested tells the buyer their LOI needs rework.
func (s *NotificationService) NotifyLOIChangesRequested(recipient *models.User, n *models.Negotiation, p *models.Property, note string) {
	subject := "Changes requested on your letter of intention"
	s.send(recipient, n, p, subject, "The seller requested changes to your letter of intention.", note)
}

// NotifyLOIResubmitted tells the seller a revised LOI is waiting.
func (s *NotificationService) NotifyLOIResubmitted(recipient *models.User, n *models.Negotiation, p *models.Property) {
	subject := "Revised letter of intention for " + p.Title
	s.send(recipient, n, p, subject, "The buyer submitted a revised letter of intention.", "Review the new document and respond within 48 hours.")
}

// NotifyNegotiationCancelled tells the counterparty the session ended.
func (s *NotificationService) NotifyNegotiationCancelled(recipient *models.User, n *models.Negotiation, p *models.Property) {
	subject := "Negotiation closed on " + p.Title
	s.send(recipient, n, p, subject, "The other party declined and closed the negotiation.", "No further actions are possible on this session.")
}

// NotifyInspectionRescheduled tells the counterparty a different slot was
// proposed.
func (s *NotificationService) NotifyInspectionRescheduled(recipient *models.User, n *models.Negotiation, p *models.Property) {
	subject := "New inspection time proposed for " + p.Title
	details := fmt.Sprintf("Proposed inspection: %s at %s (property local time). You have 48 hours to confirm or counter.",
		n.InspectionDate.Format("2006-01-02"), n.InspectionTime)
	s.send(recipient, n, p, subject, "The other party proposed a different inspection slot.", details)
}

// NotifyInspectionConfirmed tells both-side recipient the flow completed.
func (s *NotificationService) NotifyInspectionConfirmed(recipient *models.User, n *models.Negotiation, p *models.Property) {
	subject := "Inspection confirmed for " + p.Title
	details := fmt.Sprintf("Inspection locked in: %s at %s (property local time).",
		n.InspectionDate.Format("2006-01-02"), n.InspectionTime)
	s.send(recipient, n, p, subject, "Both parties agreed on the inspection slot.", details)
}

// NotifyExpired tells a party their negotiation crossed the 48h window.
func (s *NotificationService) NotifyExpired(recipient *models.User, n *models.Negotiation, p *models.Property) {
	subject := "Negotiation expired on " + p.Title
	s.send(recipient, n, p, subject, "The 48-hour response window lapsed.", "Either party can reopen the negotiation to restart the clock.")
}

func (s *NotificationService) send(recipient *models.User, n *models.Negotiation, p *models.Property, subject, intro, details string) {
	if recipient == nil {
		return
	}

	link := fmt.Sprintf("%s/negotiations/%s", s.appURL, n.ID)
	plainTextBody := fmt.Sprintf(
		"%s\n\nProperty: %s\nAddress: %s\nDetails: %s\n\nView: %s",
		intro, p.Title, p.Address, details, link,
	)
	htmlBody := fmt.Sprintf(
		negotiationUpdateEmailHTML,
		subject,
		intro,
		p.Title,
		p.Address,
		details,
		time.Now().UTC().Format(time.RFC1123Z),
		link,
	)

	// ---------- Twilio SMS ----------
	if s.twClient != nil && recipient.PhoneNumber != "" {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(recipient.PhoneNumber)
		params.SetFrom(s.fromPhone)
		params.SetBody(subject + " :: " + plainTextBody)
		if _, smsErr := s.twClient.Api.CreateMessage(params); smsErr != nil {
			utils.Logger.WithError(smsErr).Warnf("Failed to send SMS to user %s", recipient.ID)
		}
	} else if s.twClient == nil {
		utils.Logger.Warnf("Twilio client is nil, skipping SMS to user %s", recipient.ID)
	}

	// ---------- SendGrid Email ----------
	if s.sgClient != nil {
		from := mail.NewEmail(utils.OrganizationName, s.fromEmail)
		to := mail.NewEmail(recipient.FullName(), recipient.Email)
		msg := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)
		msg.TrackingSettings = &mail.TrackingSettings{
			ClickTracking: &mail.ClickTrackingSetting{
				Enable: utils.Ptr(false),
			},
		}
		if s.sendgridSandbox {
			ms := mail.NewMailSettings()
			ms.SetSandboxMode(mail.NewSetting(true))
			msg.MailSettings = ms
		}
		if _, sgErr := s.sgClient.Send(msg); sgErr != nil {
			utils.Logger.WithError(sgErr).Warnf("Email send failure to user %s", recipient.ID)
		}
	} else {
		utils.Logger.Warnf("SendGrid client is nil, skipping email to user %s", recipient.ID)
	}
}
