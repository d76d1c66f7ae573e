package report

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the Markdown run report as a minimal PDF, preserving
// paragraphs and turning bare <url> source lines into clickable links. Not a
// full Markdown layout.
func WritePDF(markdown string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	urlRe := regexp.MustCompile(`<(https?://[^>]+)>`)

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(5)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			size := 14.0
			if i >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		if m := urlRe.FindStringSubmatch(s); m != nil {
			link := m[1]
			pdf.SetTextColor(0, 0, 200)
			pdf.WriteLinkString(5, link, link)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 5, s, "", "L", false)
	}
	return pdf.OutputFileAndClose(outPath)
}
