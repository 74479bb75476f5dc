package output

import (
	"fmt"
	"io"
	"strings"

	"observatory/core/aggregate"
	"observatory/core/engine"
	"observatory/core/records"
)

const (
	boxWidth   = 73
	labelWidth = 50
	valueWidth = 20
)

// CLIFormatter draws box tables for terminals
type CLIFormatter struct{}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter() *CLIFormatter { return &CLIFormatter{} }

func (*CLIFormatter) Format() Format { return FormatCLI }

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, doc *Document) error {
	p := &printer{w: w}
	p.filter(doc)
	if doc.Value != nil {
		p.value(doc.Value)
	}
	if doc.Summaries != nil {
		p.summaries(doc.Summaries)
	}
	if doc.Stats != nil {
		p.stats(doc.Stats)
	}
	if doc.Distribution != nil {
		p.distribution(doc.Distribution)
	}
	if doc.Breakdown != nil {
		p.breakdown(doc.Breakdown)
	}
	if doc.Linkages != nil {
		p.linkages(doc)
	}
	if doc.Records != nil {
		p.records(doc.Records)
	}
	return p.err
}

// printer keeps the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) rule(left, right string) {
	p.printf("%s%s%s\n", left, strings.Repeat("─", boxWidth), right)
}

func (p *printer) title(s string) {
	p.rule("┌", "┐")
	pad := boxWidth - len([]rune(s))
	if pad < 0 {
		pad = 0
	}
	p.printf("│%s%s%s│\n", strings.Repeat(" ", pad/2), s, strings.Repeat(" ", pad-pad/2))
	p.rule("├", "┤")
}

func (p *printer) row(label, value string) {
	p.printf("│ %s %s │\n", padRight(truncate(label, labelWidth), labelWidth), padLeft(truncate(value, valueWidth), valueWidth))
}

func (p *printer) indented(label, value string) {
	p.row("  └─ "+label, value)
}

func (p *printer) end() { p.rule("└", "┘") }

func (p *printer) filter(doc *Document) {
	s := doc.Filter
	mode := "up to"
	if !s.Cumulative {
		mode = "in"
	}
	status := s.Status
	if status == "" {
		status = "any"
	}
	undated := "included"
	if !s.IncludeUndated {
		undated = "excluded"
	}
	p.printf("Layer: %s | Year: %s %d | Status: %s | Undated: %s\n\n", s.Layer, mode, s.Year, status, undated)
}

func (p *printer) value(v *ValueResult) {
	p.title("REGION VALUE")
	p.row(v.Region+" · "+string(v.Layer), v.Value.String())
	p.end()
}

func (p *printer) summaries(list []aggregate.Summary) {
	p.title("REGION SUMMARY")
	for i := range list {
		s := &list[i]
		if i > 0 {
			p.rule("├", "┤")
		}
		p.row(string(s.Region), fmt.Sprintf("%d policies", s.PoliciesCount))
		if s.PoliciesCount > 0 {
			p.indented("Dominant instrument", s.DominantInstrument())
			p.indented("Dominant sector", s.DominantSector())
			p.indented("Dominant HS section", s.DominantHSSection())
			p.indented("Education / R&D", fmt.Sprintf("%d / %d", s.EducationCount, s.RDCount))
		}
		if s.ConditionalityCount > 0 {
			p.indented("Conditionality", fmt.Sprintf("%d", s.ConditionalityCount))
		}
		if s.PlanMexicoCount > 0 {
			p.indented("Plan México", fmt.Sprintf("%d", s.PlanMexicoCount))
		}
		if s.FederalCount > 0 {
			p.indented("Federal programs", fmt.Sprintf("%d", s.FederalCount))
		}
		if s.FDICount > 0 {
			p.indented(fmt.Sprintf("FDI (%d, %d linked)", s.FDICount, s.FDILinkedCount), "$"+s.FDITotalUSD.StringFixed(1)+"M")
		}
		if s.EnergyCount > 0 {
			p.indented(fmt.Sprintf("Energy projects (%d)", s.EnergyCount), s.EnergyTotalMW.StringFixed(1)+" MW")
		}
		if s.GreenMfgCount > 0 {
			p.indented(fmt.Sprintf("Green manufacturing (%d)", s.GreenMfgCount), "$"+s.GreenMfgInvestment.StringFixed(1)+"M")
		}
		if s.MinesCount > 0 {
			p.indented("Mines", fmt.Sprintf("%d", s.MinesCount))
		}
		if s.PolesCount > 0 {
			p.indented(fmt.Sprintf("Development poles (%d, %d CIIT)", s.PolesCount, s.PolesCIITCount),
				"$"+s.PolesInvestmentCommitted.StringFixed(1)+"M")
		}
	}
	p.end()
}

func (p *printer) distribution(d *engine.Distribution) {
	p.title(strings.ToUpper(d.Title))
	for _, b := range d.Bars {
		p.row(b.Label, b.Value.String())
	}
	p.end()
}

func (p *printer) breakdown(b *engine.Breakdown) {
	p.title(strings.ToUpper(b.Title))
	for _, s := range b.Slices {
		p.row(s.Label, fmt.Sprintf("%d", s.Count))
	}
	p.end()
}

func (p *printer) stats(s *engine.Stats) {
	p.title(strings.ToUpper(string(s.Layer)))
	for _, it := range s.Items {
		p.row(it.Label, it.Value.String())
	}
	p.end()
}

func (p *printer) linkages(doc *Document) {
	p.title("FDI-POLICY LINKAGES")
	for i, g := range doc.Linkages {
		if i > 0 {
			p.rule("├", "┤")
		}
		p.row(g.State, fmt.Sprintf("%d FDI", len(g.Companies)))
		for _, c := range g.Companies {
			p.indented(c.Company, c.Sector)
			for _, l := range c.Policies {
				p.row("       → "+l.PolicyName, l.PolicySector)
			}
		}
	}
	p.end()
}

func (p *printer) records(set *RecordSet) {
	p.title(fmt.Sprintf("%s (%d)", strings.ToUpper(string(set.Kind)), len(set.Items)))
	for _, r := range set.Items {
		p.row(fmt.Sprintf("#%d %s", r.RecordID(), recordLabel(r)), r.RegionName())
	}
	p.end()
}

func recordLabel(r records.Record) string {
	switch v := r.(type) {
	case *records.Policy:
		return v.DisplayName()
	case *records.FederalProgram:
		return v.Name
	case *records.FDI:
		return v.CompanyName
	case *records.Energy:
		return v.ProjectName
	case *records.GreenManufacturing:
		return v.Name
	case *records.Mine:
		return v.PropertyName
	case *records.DevelopmentPole:
		return v.Name
	}
	return ""
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, n int) string {
	if k := n - len([]rune(s)); k > 0 {
		return s + strings.Repeat(" ", k)
	}
	return s
}

func padLeft(s string, n int) string {
	if k := n - len([]rune(s)); k > 0 {
		return strings.Repeat(" ", k) + s
	}
	return s
}
