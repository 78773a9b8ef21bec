package email

// PreviewData is sample template data for rendering emails locally.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"Email": "john@example.com",
	},
	TemplateForgotPassword: {
		"Email": "john@example.com",
		"Link":  "https://app.example.com/reset/3f2a9c/c2VhbGVk",
	},
}
