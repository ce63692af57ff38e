package notifications

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"shelfkeeper/internal/books"
	"shelfkeeper/internal/reservations"
	"shelfkeeper/internal/shared/utils/timefmt"
)

// reservationLine is one book as it appears in a confirmation mail.
type reservationLine struct {
	ReservationID  string
	Title          string
	Author         string
	ISBN           string
	ReserveTime    string
	PickupDeadline string
	PickupLocation string
	PickupMethod   string
}

type confirmationData struct {
	Name    string
	BatchID string
	Lines   []reservationLine
}

var confirmationTemplates = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`
{{define "line"}}Reservation: {{.ReservationID}}
Title: {{.Title}}
Author: {{.Author}}
ISBN: {{.ISBN}}
Reserved at: {{.ReserveTime}}
Pickup deadline: {{.PickupDeadline}}
Pickup location: {{.PickupLocation}}
Pickup method: {{.PickupMethod}}
{{end}}
{{define "single"}}Hi {{.Name}},

Your book reservation is confirmed.

{{range .Lines}}{{template "line" .}}{{end}}
Please collect the book before the pickup deadline, after which the hold is released.

Library Services
{{end}}
{{define "batch"}}Hi {{.Name}},

Your batch reservation {{.BatchID}} is confirmed for {{len .Lines}} book(s).
{{range $i, $line := .Lines}}
{{inc $i}}.
{{template "line" $line}}{{end}}
Please collect the books before their pickup deadlines, after which the holds are released.

Library Services
{{end}}
`))

func newLine(reservation reservations.Reservation, book *books.Book, loc *time.Location) reservationLine {
	line := reservationLine{
		ReservationID:  reservation.ID.String(),
		Title:          "(unknown title)",
		ReserveTime:    reservation.ReserveTime.In(loc).Format(timefmt.Display),
		PickupDeadline: reservation.ExpiryDate.In(loc).Format(timefmt.Display),
		PickupLocation: reservation.PickupLocation,
		PickupMethod:   reservation.PickupMethod,
	}
	if book != nil {
		line.Title = book.Title
		line.Author = book.Author
		line.ISBN = book.ISBN
	}
	return line
}

func renderConfirmation(name string, lines []reservationLine) (string, string, error) {
	body, err := render("single", confirmationData{Name: name, Lines: lines})
	if err != nil {
		return "", "", err
	}
	subject := "Reservation confirmed"
	if len(lines) == 1 {
		subject = fmt.Sprintf("Reservation confirmed: %s", lines[0].Title)
	}
	return subject, body, nil
}

func renderBatchConfirmation(name, batchID string, lines []reservationLine) (string, string, error) {
	body, err := render("batch", confirmationData{Name: name, BatchID: batchID, Lines: lines})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Batch reservation confirmed: %d book(s)", len(lines)), body, nil
}

func render(name string, data confirmationData) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}
