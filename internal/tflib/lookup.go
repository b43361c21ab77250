package tflib

import "fmt"

var ccdiToCDSRace = map[string]string{
	"African American": "Black or African American",
	"European":         "White",
	"Asian":            "Asian",
	"Native American":  "American Indian or Alaska Native",
	"Pacific Islander": "Native Hawaiian or Other Pacific Islander",
	"Other":            "Other",
	"Unknown":          "Unknown",
	"Not Reported":     "Unknown",
}

var cdsToCCDIRace = map[string]string{
	"Black or African American":                 "African American",
	"White":                                     "European",
	"Asian":                                     "Asian",
	"American Indian or Alaska Native":          "Native American",
	"Native Hawaiian or Other Pacific Islander": "Pacific Islander",
	"Other":                                     "Other",
	"Unknown":                                   "Unknown",
}

type lookupParams struct {
	Default string `mapstructure:"default"`
}

func raceCCDIToCDS(args []any, params any) (any, error) {
	return lookup("race_ccdi_to_cds", ccdiToCDSRace, "NA", args, params)
}

func raceCDSToCCDI(args []any, params any) (any, error) {
	return lookup("race_cds_to_ccdi", cdsToCCDIRace, "Unknown", args, params)
}

// lookup maps the argument through table. params is either the fallback
// string itself or {default: ...}.
func lookup(fn string, table map[string]string, fallback string, args []any, params any) (any, error) {
	p := lookupParams{Default: fallback}
	if s, ok := params.(string); ok {
		p.Default = s
	} else if err := decodeParams(fn, params, &p); err != nil {
		return nil, err
	}
	v, err := one(fn, args)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return p.Default, nil
	}
	if mapped, ok := table[fmt.Sprint(v)]; ok {
		return mapped, nil
	}
	return p.Default, nil
}
