package report

import (
	"strings"

	"github.com/DaviiSA/JA-app/internal/domain"
)

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

func NewExport(workOrder string, summary string) Export {
	return Export{
		Filename:    Filename(workOrder),
		ContentType: domain.ReportContentType,
		Body:        []byte(summary),
	}
}

// Filename is relatorio-os-<work order>.txt, with "servico" standing in
// for an empty work order. Path separators are replaced so the name stays
// a single file.
func Filename(workOrder string) string {
	token := workOrder
	if token == "" {
		token = domain.ReportDefaultToken
	}
	token = strings.NewReplacer("/", "-", "\\", "-").Replace(token)
	return domain.ReportFilePrefix + token + domain.ReportFileExtension
}
