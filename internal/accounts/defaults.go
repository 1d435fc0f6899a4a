package accounts

import (
	"fmt"
	"slices"
)

// templates maps starter chart names to their constructors.
var templates = map[string]func() *Chart{
	"trading": tradingChart,
}

// Templates lists the starter chart names in order.
func Templates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultChart returns the starter chart for a new book.
func DefaultChart(template string) (*Chart, error) {
	build, ok := templates[template]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownTemplate, template, Templates())
	}
	return build(), nil
}

func tradingChart() *Chart {
	c := NewChart()
	c.Assets = []string{"cash", "ar", "inventory"}
	c.Liabilities = []string{"ap", "vat"}
	c.Capital = []string{"equity"}
	c.Income = []string{"sales"}
	c.Expenses = []string{"cogs", "sga"}
	c.Contra = []ContraDecl{{Target: "sales", Accounts: []string{"refunds"}}}
	c.Titles = map[string]string{
		"ar":                    "Accounts receivable",
		"ap":                    "Accounts payable",
		"vat":                   "VAT payable",
		"cogs":                  "Cost of goods sold",
		"sga":                   "Selling, general and adm. expenses",
		DefaultRetainedEarnings: "Retained earnings",
	}
	c.Operations = map[string]Operation{
		"invest":  {Debit: "cash", Credit: "equity"},
		"buy":     {Debit: "inventory", Credit: "cash"},
		"invoice": {Debit: "ar", Credit: "sales"},
		"collect": {Debit: "cash", Credit: "ar"},
		"ship":    {Debit: "cogs", Credit: "inventory"},
		"refund":  {Debit: "refunds", Credit: "cash"},
	}
	c.reindex()
	return c
}
