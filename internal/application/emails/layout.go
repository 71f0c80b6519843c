package emails

import (
	"fmt"
	"html"
	"time"
)

const (
	themePrimary = "#0F4C5C"
	themeAccent  = "#E36414"
	themeBgBody  = "#F3F4F6"
	siteURL      = "https://host.buffr.ai"
)

// EmailLayout wraps content in the branded HTML shell.
func EmailLayout(contentHTML string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Buffr Host</title>
  <style>
    body { margin: 0; padding: 0; background-color: %s; font-family: -apple-system, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: #1F2937; }
    .content-body p { margin: 0 0 20px 0; font-size: 16px; line-height: 1.6; }
    .content-body h1 { font-size: 22px; margin: 0 0 18px 0; color: %s; }
    .buffr-button { display: inline-block; background-color: %s; color: #ffffff !important; padding: 12px 28px; border-radius: 6px; font-weight: 600; text-decoration: none; }
    .summary td { padding: 6px 12px 6px 0; font-size: 15px; }
  </style>
</head>
<body>
  <table role="presentation" width="100%%" cellspacing="0" cellpadding="0">
    <tr><td align="center" style="padding: 32px 0;">
      <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background:#FFFFFF;border-radius:8px;">
        <tr><td class="content-body" style="padding: 40px 48px;">%s</td></tr>
        <tr><td align="center" style="padding: 0 48px 32px 48px; font-size: 13px; color: #6B7280;">
          &copy; %d Buffr Host &middot; <a href="%s" style="color:%s;">host.buffr.ai</a>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`, themeBgBody, themePrimary, themeAccent, contentHTML, time.Now().Year(), siteURL, themePrimary)
}

func welcomeContent(name string) string {
	return fmt.Sprintf(`
    <h1>Welcome to Buffr Host, %s!</h1>
    <p>Your account is ready. Create your business profile to start adding properties, rooms and menus.</p>
    <p><a href="%s" class="buffr-button">Open your dashboard</a></p>
    <p style="font-size:14px;color:#666;">If you did not sign up, please contact support@buffr.ai.</p>
`, html.EscapeString(name), siteURL)
}

func invitationContent(inviteLink, tenantName, role string) string {
	return fmt.Sprintf(`
    <h1>You've been invited to join %s</h1>
    <p>You have been invited to join the team on <strong>Buffr Host</strong> as <strong>%s</strong>.</p>
    <p><a href="%s" class="buffr-button">Accept invitation</a></p>
    <p style="font-size:14px;color:#666;">This link expires in 7 days. If you were not expecting it, you can ignore this email.</p>
`, html.EscapeString(tenantName), html.EscapeString(role), html.EscapeString(inviteLink))
}

func bookingContent(n BookingNotice) string {
	hold := ""
	if n.HoldExpires != nil {
		hold = fmt.Sprintf(`<p>We are holding the room until <strong>%s UTC</strong>. Complete payment before then to confirm.</p>`,
			n.HoldExpires.UTC().Format("2 Jan 2006 15:04"))
	}
	return fmt.Sprintf(`
    <h1>Booking received, %s</h1>
    <p>Thank you for booking with <strong>%s</strong>.</p>
    <table class="summary">
      <tr><td>Reference</td><td><strong>%s</strong></td></tr>
      <tr><td>Room</td><td>%s</td></tr>
      <tr><td>Check-in</td><td>%s</td></tr>
      <tr><td>Check-out</td><td>%s</td></tr>
      <tr><td>Nights</td><td>%d</td></tr>
      <tr><td>Total</td><td>%s %.2f</td></tr>
    </table>
    %s
`, html.EscapeString(n.GuestName), html.EscapeString(n.PropertyName), html.EscapeString(n.Reference),
		html.EscapeString(n.RoomNumber), n.CheckIn.Format("Mon 2 Jan 2006"), n.CheckOut.Format("Mon 2 Jan 2006"),
		n.Nights, html.EscapeString(n.Currency), n.Total, hold)
}
