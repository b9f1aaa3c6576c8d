package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// MessageData feeds every email template; unused fields are ignored.
type MessageData struct {
	Name        string
	ServiceName string
	Date        string
	StartTime   string
	EndTime     string
	Duration    int
	Location    string
	Price       float64
	Notes       string

	PreviousDate string
	PreviousTime string

	CalendarConnected bool
	Code              string
}

const layout = `{{define "layout"}}<html>
<body style="font-family: Arial, sans-serif;">
<div style="background-color: #f5f5f5; padding: 20px;">
{{template "content" .}}
</div>
</body>
</html>{{end}}`

var templates = map[string]string{
	"confirmation": `{{define "content"}}
<h2 style="color: #333;">Appointment Confirmed!</h2>
<p style="font-size: 16px;">Your appointment has been successfully booked.</p>
<div style="background-color: #fff; padding: 20px; border-radius: 5px;">
<h3 style="color: #333;">Appointment Details:</h3>
<p><strong>Service:</strong> {{.ServiceName}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.StartTime}} - {{.EndTime}}</p>
<p><strong>Location:</strong> {{.Location}}</p>
<p><strong>Price:</strong> ${{printf "%.2f" .Price}}</p>
{{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
</div>
{{if .CalendarConnected}}<p style="color: #28a745;">This appointment has been added to your Google Calendar</p>
{{else}}<p style="color: #6c757d;">Connect your Google Calendar in your account settings to automatically sync appointments</p>{{end}}
<p style="font-size: 14px; margin-top: 20px;">If you need to reschedule or cancel, please contact us or use your account dashboard.</p>
{{end}}`,

	"reschedule": `{{define "content"}}
<h2 style="color: #333;">Appointment Rescheduled</h2>
<p style="font-size: 16px;">Your appointment has been successfully rescheduled.</p>
<div style="background-color: #fff; padding: 20px; border-radius: 5px;">
<h3 style="color: #333;">New Appointment Details:</h3>
<p><strong>Service:</strong> {{.ServiceName}}</p>
<p><strong>New Date:</strong> {{.Date}}</p>
<p><strong>New Time:</strong> {{.StartTime}} - {{.EndTime}}</p>
<p><strong>Location:</strong> {{.Location}}</p>
{{if .PreviousDate}}<hr style="margin: 15px 0;">
<p style="color: #666;"><strong>Previous Time:</strong> {{.PreviousDate}} at {{.PreviousTime}}</p>{{end}}
</div>
{{if .CalendarConnected}}<p style="color: #28a745;">Your Google Calendar has been updated with the new appointment time</p>{{end}}
{{end}}`,

	"cancellation": `{{define "content"}}
<h2 style="color: #333;">Appointment Cancelled</h2>
<p style="font-size: 16px;">Your appointment has been cancelled as requested.</p>
<div style="background-color: #fff; padding: 20px; border-radius: 5px;">
<h3 style="color: #333;">Cancelled Appointment:</h3>
<p><strong>Service:</strong> {{.ServiceName}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
{{if .StartTime}}<p><strong>Time:</strong> {{.StartTime}} - {{.EndTime}}</p>{{end}}
</div>
{{if .CalendarConnected}}<p style="color: #28a745;">This appointment has been removed from your Google Calendar</p>{{end}}
{{end}}`,

	"reminder": `{{define "content"}}
<h2 style="color: #333;">Appointment Reminder</h2>
<p style="font-size: 16px;">Hi {{.Name}},</p>
<p style="font-size: 16px;">This is a friendly reminder that you have an appointment scheduled for <strong>tomorrow</strong>!</p>
<div style="background-color: #fff; padding: 20px; border-radius: 5px; border-left: 4px solid #007bff;">
<h3 style="color: #333; margin-top: 0;">Appointment Details:</h3>
<p><strong>Service:</strong> {{.ServiceName}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.StartTime}}</p>
<p><strong>Duration:</strong> {{.Duration}} minutes</p>
<p><strong>Location:</strong> {{.Location}}</p>
{{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
</div>
<ul style="color: #333; padding-left: 20px;">
<li>Please arrive 5-10 minutes early</li>
<li>Come with a clean face (if applicable)</li>
<li>Bring any specific makeup preferences or inspiration photos</li>
</ul>
<p style="font-size: 14px; color: #666;">We look forward to seeing you tomorrow!</p>
{{end}}`,

	"verification": `{{define "content"}}
<h2 style="color: #333;">Welcome to our app!</h2>
<p style="font-size: 16px;">Please enter the verification code below to continue:</p>
<div style="background-color: #fff; padding: 20px; border-radius: 5px;">
<h3 style="color: #333;">Verification Code:</h3>
<p style="font-size: 18px; font-weight: bold; color: #007bff;">{{.Code}}</p>
</div>
<p style="font-size: 14px; margin-top: 20px;">This code will expire in 15 minutes.</p>
{{end}}`,

	"password_reset": `{{define "content"}}
<h2 style="color: #333;">Password Reset</h2>
<p style="font-size: 16px;">You have requested to reset your password. Please use the code below to set a new password for your account:</p>
<div style="background-color: #fff; padding: 20px; border-radius: 5px;">
<h3 style="color: #333;">Reset Code:</h3>
<p style="font-size: 18px; font-weight: bold; color: #007bff;">{{.Code}}</p>
</div>
<p style="font-size: 14px; margin-top: 20px;">This code will expire in 15 minutes.</p>
<p style="font-size: 14px;">If you did not request this password reset, please ignore this email.</p>
{{end}}`,
}

var parsed = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}()

// Render executes the named email template.
func Render(name string, data MessageData) (string, error) {
	t, ok := parsed[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
