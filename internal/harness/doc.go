// Package harness runs conformance scenarios against transform
// specifications.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: age_conversion
//	description: "Day/year conversions round with banker's rounding"
//	spec: ../specs/transforms.yaml
//	defaults: ../specs/defaults.yaml   # optional
//	cases:
//	  - transform: age_days_to_years
//	    input: 400
//	    expect: 1.1
//	  - transform: age_days_to_years
//	    input: -999
//	    expect_null: true
//	  - transform: fullname_to_fmlnames
//	    input: "Jane Q Public"
//	    expect_fields:
//	      investigator_middle_name: Q
//	  - transform: missing_handle
//	    input: x
//	    error: unknown transform
//
// The input of a case is routed like any pipeline call: a list is
// positional, a mapping is keywords, anything else is one scalar.
//
// # Comparison
//
// Expected and actual values are compared as canonical JSON, so integer
// and float spellings of the same number are equal. expect_fields is a
// subset match over the named outputs of a multiple-valued pipeline.
//
// # Golden Files
//
// RunWithGolden additionally snapshots the exported record graph of every
// transform the scenario touches, using goldie.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/age.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
