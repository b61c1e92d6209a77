// Package flagconfig reads feature flag settings from YAML or JSON and
// provides deciders bound to that layout.
//
// A typical file looks like this:
//
//	features:
//	  checkout.v2:
//	    enabledUserIds: [alice, bob]
//	    enabledProportion: 0.25
//	  dark-mode:
//	    enabled: true
//	    enabledCountries: [NL, DE]
//
// Combine the deciders with the feature package to answer checks:
//
//	d := flagconfig.NewDeciders(flagconfig.WithLogger(log))
//	decider := d.EnabledUsers().Or(d.ProportionOfUsers()).Or(d.FeatureEnabled())
//	checker := feature.ForReloader[*flagconfig.Config](reloader, decider)
//
// Missing keys disable a feature. Keys holding a value of the wrong shape,
// such as a string where a list is expected, are treated as missing and
// reported at warn level.
package flagconfig
