package checks

import "sort"

// MediaReport compares the objects photos point at with the objects in storage.
type MediaReport struct {
	// Photos is the number of photos checked.
	Photos int `json:"photos"`
	// Stored is the number of objects found under the media prefix.
	Stored int `json:"stored"`
	// Missing lists photo objects with no stored content. Pulled photos start
	// here until their content is uploaded.
	Missing []string `json:"missing"`
	// Orphans lists stored objects no photo refers to.
	Orphans []string `json:"orphans"`
}

// CompareMedia builds a MediaReport from the expected and stored object names.
func CompareMedia(expected, stored []string) MediaReport {
	want := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		want[name] = struct{}{}
	}
	have := make(map[string]struct{}, len(stored))
	for _, name := range stored {
		have[name] = struct{}{}
	}

	report := MediaReport{Photos: len(want), Stored: len(have), Missing: []string{}, Orphans: []string{}}
	for name := range want {
		if _, ok := have[name]; !ok {
			report.Missing = append(report.Missing, name)
		}
	}
	for name := range have {
		if _, ok := want[name]; !ok {
			report.Orphans = append(report.Orphans, name)
		}
	}
	sort.Strings(report.Missing)
	sort.Strings(report.Orphans)
	return report
}
