package sink

import "fmt"

// template describes how a histogram family is booked.
type template struct {
	title string
	bins  int
	min   float64
	max   float64
}

// jetPrefixes name the track-jet and calorimeter-jet families.
var jetPrefixes = []string{"tk", "pf"} //nolint:gochecknoglobals // fixed booking layout

// templates returns the booked families keyed by observable name.
func templates() map[string]template {
	t := map[string]template{
		"l1pt":   {title: "Leading lepton transverse momentum [GeV]", bins: 20, min: 20, max: 200},
		"l1eta":  {title: "Leading lepton pseudo-rapidity", bins: 20, min: 0, max: 2.5},
		"l2pt":   {title: "Sub-lead lepton transverse momentum [GeV]", bins: 20, min: 20, max: 200},
		"l2eta":  {title: "Sub-lead lepton pseudo-rapidity", bins: 20, min: 0, max: 2.5},
		"mll":    {title: "Dilepton invariant mass [GeV]", bins: 20, min: 20, max: 200},
		"ptll":   {title: "Dilepton transverse momentum [GeV]", bins: 20, min: 0, max: 200},
		"dphill": {title: "Delta phi(l,l')", bins: 20, min: 0, max: 3.15},
		"chrho":  {title: "Charged rho", bins: 25, min: 0, max: 25},
	}
	for _, pf := range jetPrefixes {
		t["n"+pf+"jets"] = template{title: "Jet multiplicity", bins: 5, min: 0, max: 5}
		t["n"+pf+"bjets"] = template{title: "b-jet multiplicity", bins: 5, min: 0, max: 5}
		t["n"+pf+"svtx"] = template{title: "Secondary vertex multiplicity", bins: 5, min: 0, max: 5}
		for slot := 1; slot <= 2; slot++ {
			p := fmt.Sprintf("%s%dj", pf, slot)
			t[p+"pt"] = template{title: "Jet transverse momentum [GeV]", bins: 20, min: 30, max: 200}
			t[p+"eta"] = template{title: "Jet pseudo-rapidity", bins: 20, min: 0, max: 2.5}
			t[p+"svtxm"] = template{title: "Secondary vertex mass", bins: 25, min: 0, max: 6}
			t[p+"svtxntk"] = template{title: "Secondary vertex track multiplicity", bins: 5, min: 0, max: 5}
			t[p+"csv"] = template{title: "CSVv2", bins: 25, min: 0, max: 1}
		}
	}
	return t
}

// Key returns the stored name of observable name in category.
func Key(category, name string) string {
	return category + "_" + name
}
