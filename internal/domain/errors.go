package domain

import "errors"

var ErrInvalidChoice = errors.New("value is not one of the allowed choices")

const (
	// SummaryFallback is shown whenever the report could not be generated.
	SummaryFallback = "Não foi possível gerar o resumo automático no momento."

	ReportFilePrefix     = "relatorio-os-"
	ReportDefaultToken   = "servico"
	ReportFileExtension  = ".txt"
	ReportContentType    = "text/plain; charset=utf-8"
	UnsetContractTypeTag = "Não informado"
)
