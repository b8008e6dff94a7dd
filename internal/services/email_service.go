package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"givehub/internal/models"
)

type EmailService interface {
	Notifier
	SendWelcomeEmail(email, orgName string) error
}

type emailService struct {
	dialer     *gomail.Dialer
	from       string
	adminEmail string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, adminEmail string) EmailService {
	return &emailService{
		dialer:     gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:       fromEmail,
		adminEmail: adminEmail,
	}
}

func (s *emailService) send(m *gomail.Message) error {
	m.SetHeader("From", s.from)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendWelcomeEmail(email, orgName string) error {
	m := gomail.NewMessage()
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to GiveHub!")

	body := fmt.Sprintf(`
		<h2>Welcome to GiveHub, %s!</h2>
		<p>Your organization account has been created.</p>
		<p>To publish fundraising projects you will need to verify your organization
		from the dashboard by uploading a registration document.</p>
		<p>Best regards,<br>The GiveHub Team</p>
	`, orgName)

	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

// SendAdminReviewRequest is the transactional mail of the submission flow: if
// it cannot be delivered, the submission is rolled back by the caller.
func (s *emailService) SendAdminReviewRequest(org *models.Organization, req *models.VerificationRequest, reviewLink string) error {
	m := gomail.NewMessage()
	m.SetHeader("To", s.adminEmail)
	m.SetHeader("Subject", fmt.Sprintf("Verification request #%d - %s", req.ID, org.Name))

	body := fmt.Sprintf(`
		<h3>New verification request</h3>
		<p><strong>Organization:</strong> %s</p>
		<p><strong>Contact:</strong> %s (%s, %s)</p>
		<p><strong>Website:</strong> %s</p>
		<p><strong>About:</strong> %s</p>
		<p><strong>Document:</strong> %s</p>
		<p><a href="%s">Open the review screen</a></p>
	`, org.Name, org.ContactName, org.Email, org.Phone, org.Website, org.Description, req.DocumentName, reviewLink)

	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send review request email: %w", err)
	}
	return nil
}

func (s *emailService) SendVerificationApproved(org *models.Organization, certificatePath string) error {
	m := gomail.NewMessage()
	m.SetHeader("To", org.Email)
	m.SetHeader("Subject", "Your organization has been verified")

	body := fmt.Sprintf(`
		<h3>Congratulations, %s!</h3>
		<p>Your organization has passed verification. You can now publish
		fundraising projects and receive donations.</p>
		<p>Your verification certificate is attached.</p>
	`, org.Name)

	m.SetBody("text/html", body)
	if certificatePath != "" {
		m.Attach(certificatePath)
	}

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send approval email: %w", err)
	}
	return nil
}

func (s *emailService) SendVerificationRejected(org *models.Organization, notes string, attemptsRemaining int, resubmitLink string) error {
	m := gomail.NewMessage()
	m.SetHeader("To", org.Email)
	m.SetHeader("Subject", "Your verification request was declined")

	body := fmt.Sprintf(`
		<h3>Verification declined</h3>
		<p>Unfortunately we could not verify %s this time.</p>
		<p><strong>Reviewer notes:</strong> %s</p>
	`, org.Name, notes)
	if attemptsRemaining > 0 {
		body += fmt.Sprintf(`
		<p>You have %d attempt(s) remaining.
		<a href="%s">Submit a new request</a> once the issues above are resolved.</p>
		`, attemptsRemaining, resubmitLink)
	} else {
		body += `<p>You have used all verification attempts. A new attempt will be possible after the waiting period.</p>`
	}

	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send rejection email: %w", err)
	}
	return nil
}
