package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/pkordes/rentaway/internal/domain"
)

// Subjects for the two lifecycle emails.
const (
	ConfirmationSubject = "Your RentAway Booking Confirmation"
	CancellationSubject = "Your RentAway Booking Cancellation"
)

const dateLayout = "2006-01-02"

// Message is a composed email ready for a Gateway.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// bookingView is the data handed to the templates.
type bookingView struct {
	Name     string
	Title    string
	CheckIn  string
	CheckOut string
	Guests   int
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h2>Booking Confirmation</h2>
<p>Dear {{.Name}},</p>
<p>Your booking for <b>{{.Title}}</b> has been successfully confirmed!</p>
<p><b>Booking Details:</b></p>
<ul>
  <li>Check-in: {{.CheckIn}}</li>
  <li>Check-out: {{.CheckOut}}</li>
  <li>Guests: {{.Guests}}</li>
</ul>
<p>We'll reach out to you soon with more information.</p>
<br/>
<p>Thanks for choosing <b>RentAway</b></p>
`))

	cancellationTmpl = template.Must(template.New("cancellation").Parse(`<h2>Booking Cancelled</h2>
<p>Dear {{.Name}},</p>
<p>Your booking for <b>{{.Title}}</b> has been cancelled.</p>
<p><b>Cancelled Booking:</b></p>
<ul>
  <li>Check-in: {{.CheckIn}}</li>
  <li>Check-out: {{.CheckOut}}</li>
  <li>Guests: {{.Guests}}</li>
</ul>
<p>We hope to host you another time.</p>
<br/>
<p>The <b>RentAway</b> team</p>
`))
)

// ConfirmationMessage composes the email sent after a booking is created.
func ConfirmationMessage(who domain.Identity, listing domain.Listing, b domain.Booking) (Message, error) {
	return compose(confirmationTmpl, ConfirmationSubject, who, listing, b)
}

// CancellationMessage composes the email sent after a booking is cancelled.
// It reports the booking's original stay parameters.
func CancellationMessage(who domain.Identity, listing domain.Listing, b domain.Booking) (Message, error) {
	return compose(cancellationTmpl, CancellationSubject, who, listing, b)
}

func compose(t *template.Template, subject string, who domain.Identity, listing domain.Listing, b domain.Booking) (Message, error) {
	var buf bytes.Buffer
	err := t.Execute(&buf, bookingView{
		Name:     who.DisplayName(),
		Title:    listing.Title,
		CheckIn:  formatDate(b.CheckIn),
		CheckOut: formatDate(b.CheckOut),
		Guests:   b.Guests,
	})
	if err != nil {
		return Message{}, fmt.Errorf("notify: render %s: %w", t.Name(), err)
	}
	return Message{To: who.Email, Subject: subject, HTML: buf.String()}, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
