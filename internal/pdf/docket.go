// internal/pdf/docket.go
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"waste-docket-api-server/internal/models"

	"github.com/go-pdf/fpdf"
)

const ContentType = "application/pdf"

// FileName is the attachment name used for a docket's PDF.
func FileName(d *models.DocketView) string {
	n := strings.TrimSpace(d.DocketData.IndividualDocketNumber)
	if n == "" {
		n = d.ID.Hex()
	}
	return "docket-" + strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(n) + ".pdf"
}

// RenderDocket lays out a docket on one A4 page.
func RenderDocket(fleet *models.Fleet, d *models.DocketView) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Waste docket "+d.DocketData.IndividualDocketNumber, true)
	doc.SetAuthor(fleet.Name, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(fleet.Name), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	for _, line := range companyLines(fleet) {
		doc.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, tr("Docket "+d.DocketData.IndividualDocketNumber), "B", 1, "L", false, 0, "")
	doc.Ln(2)

	data := d.DocketData
	section(doc, tr, "Collection", [][2]string{
		{"Date", strings.TrimSpace(data.Date + " " + data.Time)},
		{"Job ID", data.JobID},
		{"Vehicle", data.VehicleRegistration},
		{"Driver", data.DriverName},
		{"Collection point", data.CollectionPointName},
		{"Address", formatAddress(data.CollectionPointAddress)},
	})

	if c := d.CustomerContact; c != nil {
		section(doc, tr, "Customer", [][2]string{
			{"Name", c.CustomerName},
			{"Email", c.CustomerEmail},
			{"Phone", c.CustomerPhone},
			{"Address", formatAddress(c.CustomerAddress)},
		})
	}
	if f := d.DestinationFacility; f != nil {
		fd := f.DestinationFacilityData
		section(doc, tr, "Destination facility", [][2]string{
			{"Name", fd.DestinationFacilityName},
			{"Facility ID", fd.DestinationFacilityID},
			{"Licence", fd.DestinationFacilityLicense},
			{"Address", formatAddress(fd.DestinationFacilityAddress)},
		})
	}

	wasteTable(doc, tr, data.WasteLines)

	if data.IsExport == "true" || data.IsExport == "yes" {
		section(doc, tr, "Export", [][2]string{
			{"Port of export", data.PortOfExport},
			{"Country of destination", data.CountryOfDestination},
			{"Facility at destination", data.FacilityAtDestination},
			{"TFS reference", data.TFSReferenceNumber},
			{"Notes", data.AdditionalNotesOnExport},
		})
	}
	if data.AdditionalInformation != "" {
		section(doc, tr, "Additional information", [][2]string{{"", data.AdditionalInformation}})
	}

	section(doc, tr, "Signatures", [][2]string{
		{"Driver", signed(data.DriverSignature)},
		{"Customer", signed(data.CustomerSignature)},
		{"Facility representative", signed(data.WasteFacilityRepSignature)},
	})

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render docket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(doc *fpdf.Fpdf, tr func(string) string, title string, rows [][2]string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, tr(title), "", 1, "L", false, 0, "")
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		doc.SetFont("Helvetica", "B", 9)
		doc.CellFormat(50, 5, tr(r[0]), "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.MultiCell(0, 5, tr(r[1]), "", "L", false)
	}
	doc.Ln(2)
}

func wasteTable(doc *fpdf.Fpdf, tr func(string) string, lines []models.WasteLine) {
	if len(lines) == 0 {
		return
	}
	widths := []float64{80, 30, 25, 25, 30}
	header := []string{"Description", "LoW code", "Quantity", "Unit", "Hazardous"}

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Waste", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "B", 9)
	for i, h := range header {
		doc.CellFormat(widths[i], 6, h, "1", 0, "L", false, 0, "")
	}
	doc.Ln(-1)
	doc.SetFont("Helvetica", "", 9)
	for _, l := range lines {
		hazardous := "No"
		if l.IsHazardous {
			hazardous = "Yes"
		}
		cells := []string{l.Description, l.LoWCode, fmt.Sprintf("%g", l.Quantity), l.Unit, hazardous}
		for i, c := range cells {
			doc.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	doc.Ln(2)
}

func companyLines(f *models.Fleet) []string {
	var out []string
	if f.LegalName != "" && f.LegalName != f.Name {
		out = append(out, f.LegalName)
	}
	if a := formatAddress(f.CompanyAddress); a != "" {
		out = append(out, a)
	}
	var ids []string
	if f.PermitNumber != "" {
		ids = append(ids, "Permit "+f.PermitNumber)
	}
	if f.VATNumber != "" {
		ids = append(ids, "VAT "+f.VATNumber)
	}
	if f.CompanyRegistrationNumber != "" {
		ids = append(ids, "Reg. "+f.CompanyRegistrationNumber)
	}
	if len(ids) > 0 {
		out = append(out, strings.Join(ids, "  |  "))
	}
	if contact := strings.TrimSpace(f.CompanyPhone + "  " + f.CompanyEmail); contact != "" {
		out = append(out, contact)
	}
	return out
}

func formatAddress(a models.Address) string {
	var parts []string
	for _, p := range []string{a.AddressLine1, a.AddressLine2, a.Town, a.County, a.Eircode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func signed(url string) string {
	if url == "" {
		return "Not signed"
	}
	return "Signed"
}
