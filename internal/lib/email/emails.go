package email

const (
	SubjectWelcome          = "Welcome Onboard!"
	SubjectPasswordRecovery = "Password recovery"
)

func (c *Client) SendWelcomeEmail(to string) error {
	return c.SendEmail(to, SubjectWelcome, TemplateWelcome, map[string]string{
		"Email": to,
	})
}

// SendPasswordRecoveryEmail mails the reset link built by the auth service.
func (c *Client) SendPasswordRecoveryEmail(to, link string) error {
	return c.SendEmail(to, SubjectPasswordRecovery, TemplateForgotPassword, map[string]string{
		"Email": to,
		"Link":  link,
	})
}
