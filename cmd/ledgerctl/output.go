package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	pb "github.com/JoeShih716/go-expense-ledger/proto"
)

var (
	successSymbol = "✓"
	warningSymbol = "!"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FFAF00", Dark: "#FFAF00"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	headerStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printWarning(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", warningStyle.Render(warningSymbol), message)
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// formatAmount 以貨幣格式顯示伺服器回傳的十進位字串；無法解析時原樣輸出
func formatAmount(raw, currency string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return domain.FormatAmount(d, currency)
}

func printAccount(w io.Writer, currency string, a *pb.Account) {
	def := ""
	if a.IsDefault {
		def = " (default)"
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", headerStyle.Render(a.Name), def)
	_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("id:     "), a.Id)
	_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("kind:   "), a.Kind)
	_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("balance:"), formatAmount(a.Balance, currency))
}

// printTable 以欄寬對齊輸出表格
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		out := make([]string, len(cells))
		for i, cell := range cells {
			out[i] = style.Width(widths[i]).Render(cell)
		}
		return strings.TrimRight(strings.Join(out, "  "), " ")
	}

	_, _ = fmt.Fprintln(w, render(headers, headerStyle))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, render(row, lipgloss.NewStyle()))
	}
}
