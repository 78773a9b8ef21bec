package email

type Template string

const (
	TemplateWelcome        Template = "welcome"
	TemplateForgotPassword Template = "forgot_password"
)
