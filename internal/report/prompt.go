package report

import (
	"fmt"
	"strings"

	"github.com/DaviiSA/JA-app/internal/domain"
)

// BuildPrompt renders the instruction sent to the text-generation service.
func BuildPrompt(state domain.FormState) string {
	contract := domain.UnsetContractTypeTag
	if state.ContractType != nil {
		contract = string(*state.ContractType)
	}

	var builder strings.Builder
	builder.WriteString("Aja como um gestor de obras sênior. Com base nos dados abaixo de uma execução de serviço, gere um resumo profissional e técnico em português:\n\n")
	fmt.Fprintf(&builder, "- Número da Obra/OS: %s\n", state.WorkOrder)
	fmt.Fprintf(&builder, "- Tipo de Contrato: %s\n", contract)
	fmt.Fprintf(&builder, "- Colaboradores Envolvidos: %s\n", strings.Join(state.SelectedStaff, ", "))
	builder.WriteString("- Itens de Mão de Obra:\n")
	for _, entry := range state.LaborEntries {
		fmt.Fprintf(&builder, "  - Código: %s, Quantidade: %s, Ação: %s\n", entry.Code, entry.Quantity, entry.Type)
	}
	if len(state.Photos) > 0 {
		fmt.Fprintf(&builder, "- Registros fotográficos anexados: %d\n", len(state.Photos))
	}
	builder.WriteString("\nO resumo deve ser sucinto, profissional e pronto para ser enviado como relatório.\n")
	return builder.String()
}
