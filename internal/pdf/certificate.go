package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"givehub/internal/models"
)

// CertificateGenerator renders the verification certificate attached to the
// approval email.
type CertificateGenerator struct {
	RootDir string
}

func NewCertificateGenerator(rootDir string) *CertificateGenerator {
	return &CertificateGenerator{RootDir: filepath.Clean(rootDir)}
}

func (g *CertificateGenerator) GenerateCertificate(org *models.Organization, reviewer models.Reviewer, approvedAt time.Time) (string, error) {
	absPath, err := g.ensureTarget(fmt.Sprintf("certificate_org_%d.pdf", org.ID))
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Verification Certificate - %s", org.Name), true)
	pdf.SetAuthor("GiveHub", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "CERTIFICATE OF VERIFICATION", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("No. GH-%06d  issued  %s", org.ID, approvedAt.Format("02.01.2006")), "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 7,
		"This is to certify that the organization named below has passed the GiveHub "+
			"verification review and is entitled to publish fundraising projects and "+
			"accept donations on the platform.",
		"", "L", false)
	pdf.Ln(4)

	g.sectionTitle(pdf, "Organization")
	g.kvLine(pdf, "Name", org.Name)
	g.kvLine(pdf, "Contact", org.ContactName)
	g.kvLine(pdf, "Email", org.Email)
	if org.Website != "" {
		g.kvLine(pdf, "Website", org.Website)
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Review")
	g.kvLine(pdf, "Reviewed by", strings.TrimSpace(reviewer.FirstName+" "+reviewer.LastName))
	g.kvLine(pdf, "Approved on", approvedAt.Format("02 January 2006"))
	pdf.Ln(10)

	lineY := pdf.GetY()
	pdf.SetLineWidth(0.3)
	pdf.Line(130, lineY+10, 190, lineY+10)
	pdf.SetY(lineY + 12)
	pdf.SetX(130)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(60, 5, "(signature)")

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func (g *CertificateGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename)
	return filepath.Join(g.RootDir, filename), nil
}

func (g *CertificateGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func (g *CertificateGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *CertificateGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
