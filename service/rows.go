package service

import (
	"strings"

	"github.com/Jostyn07/Asesoriasth-backend/model"
)

// Row rendering for the mirror spreadsheet. The reporting sheet keeps one
// row per person, so a submission with dependents becomes the titular row
// followed by one mostly-blank row per dependent, all sharing the clientId.

// PolicyRows renders the policies sink group: titular first, then
// dependents in submission order.
func PolicyRows(s *model.Submission) [][]string {
	rows := make([][]string, 0, 1+len(s.Dependents))

	rows = append(rows, []string{
		s.ClientID,
		"Titular",
		s.GivenName,
		s.FamilyName,
		s.Phone,
		s.Email,
		isoToUS(s.BirthDate),
		s.ImmigrationStat,
		s.SSN,
		s.Income,
		s.Occupation,
		s.Nationality,
		s.Address,
		s.City,
		s.State,
		s.ZipCode,
		s.Company,
		s.Plan,
		s.Agent,
		"", // parentesco only applies to dependents
		strings.Join(s.FileLinks, "\n"),
	})

	for _, d := range s.Dependents {
		rows = append(rows, []string{
			s.ClientID,
			"Dependiente",
			d.GivenName,
			d.FamilyName,
			"", // telefono
			"", // correo
			isoToUS(d.BirthDate),
			d.ImmigrationStat,
			d.SSN,
			"", // ingresos
			"", // ocupacion
			"", // nacionalidad
			"", // direccion
			"", // ciudad
			"", // estado
			"", // codigo postal
			"", // compania
			"", // plan
			"", // operador
			d.Relationship,
			"", // file links
		})
	}

	return rows
}

// PaymentRow renders the payment sink group. Account and card numbers are
// masked to their last four digits; the full values live only in the
// primary store.
func PaymentRow(s *model.Submission) []string {
	p := s.PaymentMethod
	row := []string{
		s.ClientID,
		s.GivenName + " " + s.FamilyName,
		p.Type,
		p.Holder,
	}

	switch p.Type {
	case model.PaymentBank:
		row = append(row, p.BankName, p.RoutingNumber, maskNumber(p.AccountNumber), "")
	case model.PaymentCard:
		row = append(row, "", "", maskNumber(p.CardNumber), p.Expiration)
	default:
		row = append(row, "", "", "", "")
	}

	return row
}

// PlanRows renders one row per supplemental plan selection.
func PlanRows(s *model.Submission) [][]string {
	rows := make([][]string, 0, len(s.CignaPlans))
	for _, p := range s.CignaPlans {
		rows = append(rows, []string{
			s.ClientID,
			s.GivenName + " " + s.FamilyName,
			p.Type,
			p.Plan,
			p.Premium,
			p.Beneficiary,
		})
	}
	return rows
}

// isoToUS converts YYYY-MM-DD to MM/DD/YYYY, the format the reporting
// sheet expects. Anything not in ISO shape passes through unchanged.
func isoToUS(iso string) string {
	parts := strings.SplitN(iso, "-", 3)
	if len(parts) != 3 || len(parts[0]) != 4 {
		return iso
	}
	return parts[1] + "/" + parts[2] + "/" + parts[0]
}

// maskNumber hides all but the last four characters.
func maskNumber(n string) string {
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
