package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "registration_received"}}<h1>New User Registration</h1>
<p>A new user has registered and needs approval:</p>
<ul>
  <li><strong>Name:</strong> {{.Name}}</li>
  <li><strong>Email:</strong> {{.Email}}</li>
  <li><strong>University:</strong> {{.University}}</li>
  <li><strong>Preferred Username:</strong> {{.PreferredUsername}}</li>
  {{if .GitHubID}}<li><strong>GitHub ID:</strong> {{.GitHubID}}</li>{{end}}
</ul>
<p>Please log in to the <a href="{{.DashboardURL}}">admin dashboard</a> to review this request.</p>
{{end}}
{{define "registration_approved"}}<h1>Registration Approved</h1>
<p>Hello {{.Name}},</p>
<p>We're pleased to inform you that your registration has been approved. You can now log in to the system with your credentials.</p>
{{if .Comments}}<p><strong>Comments from admin:</strong> {{.Comments}}</p>{{end}}
<p>Welcome aboard!</p>
<p>Regards,<br>The Admin Team</p>
{{end}}
{{define "registration_rejected"}}<h1>Registration Status</h1>
<p>Hello {{.Name}},</p>
<p>We regret to inform you that your registration request has been declined.</p>
{{if .Comments}}<p><strong>Reason:</strong> {{.Comments}}</p>{{end}}
<p>If you believe this was in error or would like more information, please contact our support team.</p>
<p>Regards,<br>The Admin Team</p>
{{end}}
{{define "annual_update"}}<h1>Annual Information Update</h1>
<p>Hello {{.Name}},</p>
<p>It's time for our annual information update. Please review and update your information by clicking the link below:</p>
<p><a href="{{.URL}}">Update My Information</a></p>
<p>If you have any questions, please contact our support team.</p>
<p>Thank you,<br>The Admin Team</p>
{{end}}
`))

func renderHTML(name string, data any) string {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		// plain text body still goes out
		return ""
	}
	return strings.TrimSpace(buf.String())
}

type registrationMail struct {
	*domain.Registration
	DashboardURL string
}

func registrationReceivedEmail(adminEmail, dashboardURL string, r *domain.Registration) domain.Email {
	return domain.Email{
		To:      []string{adminEmail},
		Subject: "New User Registration Pending Approval",
		Text: fmt.Sprintf("A new user registration from %s (%s) is pending approval. "+
			"Please log in to the admin dashboard to review.", r.Name, r.Email),
		HTML: renderHTML("registration_received", registrationMail{Registration: r, DashboardURL: dashboardURL}),
	}
}

func registrationApprovedEmail(r *domain.Registration) domain.Email {
	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\nWe're pleased to inform you that your registration has been approved. "+
		"You can now log in to the system with your credentials.\n\n", r.Name)
	if r.Comments != "" {
		fmt.Fprintf(&text, "Comments from admin: %s\n\n", r.Comments)
	}
	text.WriteString("Welcome aboard!\n\nRegards,\nThe Admin Team")

	return domain.Email{
		To:      []string{r.Email},
		Subject: "Your Registration Has Been Approved",
		Text:    text.String(),
		HTML:    renderHTML("registration_approved", r),
	}
}

func registrationRejectedEmail(r *domain.Registration) domain.Email {
	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\nWe regret to inform you that your registration request has been declined.\n\n", r.Name)
	if r.Comments != "" {
		fmt.Fprintf(&text, "Reason: %s\n\n", r.Comments)
	}
	text.WriteString("If you believe this was in error or would like more information, " +
		"please contact our support team.\n\nRegards,\nThe Admin Team")

	return domain.Email{
		To:      []string{r.Email},
		Subject: "Your Registration Status",
		Text:    text.String(),
		HTML:    renderHTML("registration_rejected", r),
	}
}

func annualUpdateEmail(u *domain.User, year int, url string) domain.Email {
	return domain.Email{
		To:      []string{u.Email},
		Subject: fmt.Sprintf("Annual Information Update Request %d", year),
		Text: fmt.Sprintf("Hello %s,\n\nIt's time for our annual information update. "+
			"Please review and update your information by clicking the link below:\n\n%s\n\n"+
			"If you have any questions, please contact our support team.\n\nThank you,\nThe Admin Team", u.Name, url),
		HTML: renderHTML("annual_update", struct {
			Name string
			URL  string
		}{u.Name, url}),
	}
}
