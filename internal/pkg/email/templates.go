package email

// Template names
const (
	TemplateContactNotification = "contact_notification"
	TemplateBookingReceived     = "booking_received"
	TemplateBookingConfirmed    = "booking_confirmed"
	TemplateBookingCancelled    = "booking_cancelled"
)

// baseTemplate is the layout every email is wrapped in
const baseTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { margin: 0; padding: 0; font-family: Georgia, 'Times New Roman', serif; background-color: #f7f3ec; color: #3b2f23; }
.container { max-width: 600px; margin: 0 auto; padding: 40px 20px; }
.card { background: #ffffff; border-radius: 8px; padding: 32px; border: 1px solid #e6dccb; }
.logo { text-align: center; margin-bottom: 24px; color: #8a6d3b; letter-spacing: 2px; }
h2 { font-size: 22px; margin: 0 0 16px; }
p { font-size: 16px; line-height: 1.6; margin: 0 0 16px; }
table.details { width: 100%; border-collapse: collapse; margin: 16px 0; }
table.details td { padding: 6px 0; border-bottom: 1px solid #f0e9dc; }
.footer { text-align: center; font-size: 12px; color: #a08e74; margin-top: 24px; }
</style>
</head>
<body>
<div class="container">
<div class="card">
<div class="logo"><h1>APOLLO'S HIDEAWAY</h1></div>
{{.Content}}
</div>
<div class="footer">Apollo's Hideaway &middot; Boutique villa resort</div>
</div>
</body>
</html>`

const contactNotificationTemplate = `
<h2>New contact form message</h2>
<table class="details">
<tr><td>Name</td><td>{{.Name}}</td></tr>
<tr><td>Email</td><td>{{.Email}}</td></tr>
{{if .Phone}}<tr><td>Phone</td><td>{{.Phone}}</td></tr>{{end}}
</table>
<p>{{.Message}}</p>`

const bookingReceivedTemplate = `
<h2>We are holding {{.VillaName}} for you</h2>
<p>Dear {{.GuestName}}, your reservation request has been received. Complete the payment to confirm it.</p>
<table class="details">
<tr><td>Check-in</td><td>{{.CheckIn}}</td></tr>
<tr><td>Check-out</td><td>{{.CheckOut}}</td></tr>
<tr><td>Guests</td><td>{{.Guests}}</td></tr>
<tr><td>Total</td><td>${{printf "%.2f" .TotalPrice}}</td></tr>
</table>
<p>Reference: {{.BookingID}}</p>`

const bookingConfirmedTemplate = `
<h2>Your stay is confirmed</h2>
<p>Dear {{.GuestName}}, thank you for your payment. {{.VillaName}} is reserved for you.</p>
<table class="details">
<tr><td>Check-in</td><td>{{.CheckIn}}</td></tr>
<tr><td>Check-out</td><td>{{.CheckOut}}</td></tr>
<tr><td>Nights</td><td>{{.Nights}}</td></tr>
<tr><td>Guests</td><td>{{.Guests}}</td></tr>
<tr><td>Paid</td><td>${{printf "%.2f" .TotalPrice}}</td></tr>
</table>
<p>Reference: {{.BookingID}}</p>`

const bookingCancelledTemplate = `
<h2>Your reservation was released</h2>
<p>Dear {{.GuestName}}, your reservation of {{.VillaName}} from {{.CheckIn}} to {{.CheckOut}} is no longer held{{if .Reason}} ({{.Reason}}){{end}}.</p>
<p>If you still wish to stay with us, please book again on our website.</p>
<p>Reference: {{.BookingID}}</p>`
