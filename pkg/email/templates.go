package email

import (
	"fmt"
	"html"
)

// NotificationEmailData carries a rendered notification into the standard
// email wrapper.
type NotificationEmailData struct {
	Email   string
	Title   string
	Message string
	AppName string
}

// BuildNotificationEmail wraps a rendered notification title and message in
// the standard CareTrack email layout. The subject is the notification title.
func BuildNotificationEmail(data NotificationEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "CareTrack"
	}

	textBody := fmt.Sprintf(`%s

%s

Thanks,
The %s Team`,
		data.Title, data.Message, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">%s</h2>
    <p style="background-color: #f3f4f6; padding: 15px; border-radius: 6px;">%s</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px; border-top: 1px solid #e5e7eb; padding-top: 20px;">
        Thanks,<br>The %s Team
    </p>
</body>
</html>`,
		html.EscapeString(data.Title), html.EscapeString(data.Message), appName)

	return Message{
		To:       []string{data.Email},
		Subject:  data.Title,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
