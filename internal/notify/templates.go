package notify

import "strings"

// Email templates use {{var}} placeholders filled by renderTemplate. The
// rejection template additionally carries a reason block that is dropped
// entirely when no shareable reason is provided.

const inviteSubject = "Interview invitation: {{job_title}} at {{company_name}}"

const inviteBody = `<p>Hi {{candidate_name}},</p>
<p>Thank you for your interest in the <strong>{{job_title}}</strong> position at {{company_name}}. Your profile stood out to us and we would love to talk to you.</p>
<p>Please pick an interview slot that works for you, and we will send over the meeting details.</p>
<p>Best regards,<br>{{recruiter_name}}<br>{{company_name}}</p>`

const confirmationSubject = "Interview confirmed: {{job_title}} at {{company_name}}"

const confirmationBody = `<p>Hi {{candidate_name}},</p>
<p>Your interview for the <strong>{{job_title}}</strong> position at {{company_name}} is confirmed for <strong>{{scheduled_at}}</strong>.</p>
<p>Join using this link: <a href="{{meeting_url}}">{{meeting_url}}</a></p>
<p>A notetaker will join the call so we can focus on the conversation.</p>
<p>Best regards,<br>{{recruiter_name}}<br>{{company_name}}</p>`

const acceptanceSubject = "Good news about your application at {{company_name}}"

const acceptanceBody = `<p>Hi {{candidate_name}},</p>
<p>We are delighted to let you know that we would like to move forward with your application for the <strong>{{job_title}}</strong> position at {{company_name}}.</p>
<p>{{recruiter_name}} will reach out shortly with the next steps.</p>
<p>Congratulations!<br>{{company_name}}</p>`

const rejectionSubject = "Update on your application at {{company_name}}"

const rejectionBody = `<p>Hi {{candidate_name}},</p>
<p>Thank you for taking the time to interview for the <strong>{{job_title}}</strong> position at {{company_name}}. After careful consideration we have decided not to move forward with your application.</p>
{{reason_block}}<p>Your profile remains in our talent pool, and we will reach out if another opening looks like a strong match.</p>
<p>We wish you all the best in your search.<br>{{recruiter_name}}<br>{{company_name}}</p>`

const rejectionReasonBlock = `<p>{{reason}}</p>
`

// renderTemplate substitutes {{key}} placeholders with their values. Unknown
// placeholders are left untouched so a template bug is visible, not silent.
func renderTemplate(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

// renderRejection renders the rejection body, including the reason block only
// when a shareable reason is present
func renderRejection(vars map[string]string, reason string) string {
	body := rejectionBody
	if strings.TrimSpace(reason) == "" {
		body = strings.ReplaceAll(body, "{{reason_block}}", "")
	} else {
		body = strings.ReplaceAll(body, "{{reason_block}}", rejectionReasonBlock)
		vars["reason"] = reason
	}
	return renderTemplate(body, vars)
}
