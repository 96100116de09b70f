package commands

import (
	"fmt"
	"strings"

	"Elegora/internal/amount"
	"Elegora/internal/cli/bootstrap"
	"Elegora/internal/cli/ledger"
	"Elegora/internal/logging"
)

// Точки сборки зависимостей; тесты подменяют их на in-memory леджер.
var (
	openSession = bootstrap.Open
	openLedger  = bootstrap.OpenLedger
	newLogger   = logging.New
)

// describeTerms — условия листинга одной строкой: аукцион, аренда, логистика.
func describeTerms(it ledger.Item) string {
	var parts []string
	if it.IsAuction {
		parts = append(parts, fmt.Sprintf("auction %ds", it.AuctionDuration))
	}
	if it.IsRent {
		parts = append(parts, fmt.Sprintf("rent %s/%ds", amount.ToDisplayString(it.RentalPrice), it.RentalDuration))
	}
	if it.UseLogistics {
		parts = append(parts, "logistics "+amount.ToDisplayString(it.LogisticsPrice))
	}
	return strings.Join(parts, ", ")
}
