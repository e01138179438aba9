package service

import (
	"strconv"
	"strings"

	"github.com/Eursukkul/eventsphere/internal/models"
)

const csvBOM = "\ufeff"

var csvHeader = []string{"Name", "Email", "Phone", "Seats", "Team Name", "Payment Status", "Ticket ID"}

// RegistrationsCSV renders registrations as a BOM-prefixed CSV document.
// Every data cell is quoted. Rows are separated by "\n" with no trailing
// newline.
func RegistrationsCSV(registrations []models.Registration) []byte {
	var b strings.Builder
	b.WriteString(csvBOM)
	b.WriteString(strings.Join(csvHeader, ","))

	for _, r := range registrations {
		var name, email, phone string
		if r.User != nil {
			name, email, phone = r.User.Name, r.User.Email, r.User.Phone
		}

		cells := []string{
			name,
			email,
			phone,
			strconv.Itoa(r.Seats),
			r.TeamName,
			string(r.PaymentStatus),
			r.TicketID,
		}
		for i, c := range cells {
			cells[i] = quoteCSV(c)
		}

		b.WriteByte('\n')
		b.WriteString(strings.Join(cells, ","))
	}
	return []byte(b.String())
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
