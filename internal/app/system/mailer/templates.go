// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// JoinLink builds the public join URL a pending user follows to create
// an account: {base}/join/{institution|course}/{entityID}/{pendingID}.
func JoinLink(baseURL, entityKind, entityID, pendingID string) string {
	return fmt.Sprintf("%s/join/%s/%s/%s", baseURL, entityKind, entityID, pendingID)
}

// AddedEmailData feeds the template sent to users who already have an
// account and were added to an entity directly.
type AddedEmailData struct {
	SiteName   string
	EntityKind string // "institution" or "course"
	EntityName string
	Role       string
}

// BuildAddedEmail creates the "you've been added" email with HTML and
// text bodies. To is set by the caller.
func BuildAddedEmail(data AddedEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("You've been added to %s", data.EntityName),
		TextBody: buildAddedText(data),
		HTMLBody: buildAddedHTML(data),
	}
}

func buildAddedText(data AddedEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("You've been added to the %s %q on %s as %s.\n\n", data.EntityKind, data.EntityName, data.SiteName, data.Role))
	buf.WriteString("Sign in with your existing account to get started.\n")
	return buf.String()
}

func buildAddedHTML(data AddedEmailData) string {
	tmpl := template.Must(template.New("added").Parse(addedHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// InvitationEmailData feeds the template sent to addresses with no
// account yet; JoinLink points at the public join flow.
type InvitationEmailData struct {
	SiteName   string
	EntityKind string
	EntityName string
	Role       string
	JoinLink   string
}

// BuildInvitationEmail creates the invitation email carrying the join
// link. To is set by the caller.
func BuildInvitationEmail(data InvitationEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("You're invited to join %s", data.EntityName),
		TextBody: buildInvitationText(data),
		HTMLBody: buildInvitationHTML(data),
	}
}

func buildInvitationText(data InvitationEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("You've been invited to join the %s %q on %s as %s.\n\n", data.EntityKind, data.EntityName, data.SiteName, data.Role))
	buf.WriteString("Create your account here:\n")
	buf.WriteString(data.JoinLink + "\n\n")
	buf.WriteString("If you were not expecting this invitation, you can safely ignore this email.\n")
	return buf.String()
}

func buildInvitationHTML(data InvitationEmailData) string {
	tmpl := template.Must(template.New("invitation").Parse(invitationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const addedHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Added</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                You've been added to the {{.EntityKind}} <strong>{{.EntityName}}</strong> as {{.Role}}.
              </p>
              <p style="margin: 0; font-size: 14px; color: #6b7280;">
                Sign in with your existing account to get started.
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You received this email because someone added you on {{.SiteName}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const invitationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Invitation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                You've been invited to join the {{.EntityKind}} <strong>{{.EntityName}}</strong> as {{.Role}}.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.JoinLink}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Join Now
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                If you were not expecting this invitation, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
