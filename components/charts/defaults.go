package charts

// The built-in page covers professional and business services employment,
// the dataset the module was extracted from. Series ids follow the BLS CES
// convention: a fixed prefix, an industry code, and a data-type suffix.
var defaultManifest = PageManifest{
	Version: ManifestVersion,
	Title:   "Professional & Business Services Employment",
	Dataset: DatasetRef{
		URL: "https://andreadrechsler18.github.io/ndrechslermacrocharts/data/pbs_employment.json",
	},
	Mode:       ModeYoY,
	Horizon:    0,
	TotalID:    "CES0000000001",
	ExcludedID: "CES9000000001",
	Exclude: []string{
		"_DISC", // discontinued series kept in the feed for archival reads
	},
	FilterGroups: []string{"industry", "datatype"},
	Filters: []Filter{
		{Key: "CES6054", Label: "Professional, scientific, technical", Group: "industry"},
		{Key: "CES6055", Label: "Management of companies", Group: "industry"},
		{Key: "CES6056", Label: "Administrative & waste services", Group: "industry"},
		{Key: "all-employees", Label: "All employees", Group: "datatype", Suffixes: []string{"01"}},
		{Key: "avg-hourly-earnings", Label: "Avg hourly earnings", Group: "datatype", Suffixes: []string{"03", "08"}},
	},
	Categories: []Category{
		{
			Key:     "professional-scientific-technical",
			Label:   "Professional, scientific & technical services",
			TotalID: "CES6054000001",
			Range:   [2]string{"CES6054100001", "CES6054999901"},
		},
		{
			Key:     "administrative-support",
			Label:   "Administrative & support services",
			TotalID: "CES6056000001",
			Range:   [2]string{"CES6056100001", "CES6056999901"},
		},
	},
	Computed: []ComputedSeries{
		{
			ID:      "PBS_EX_COMPUTER",
			Name:    "PBS ex. computer systems design",
			Sources: [2]int{1, 2},
		},
	},
	Charts: map[string]ChartOverride{
		"CES0000000001": {Kind: KindLine},
	},
}

// DefaultPageManifest returns a copy of the built-in page manifest.
func DefaultPageManifest() *PageManifest {
	doc := defaultManifest
	doc.Exclude = append([]string(nil), defaultManifest.Exclude...)
	doc.FilterGroups = append([]string(nil), defaultManifest.FilterGroups...)
	doc.Filters = append([]Filter(nil), defaultManifest.Filters...)
	doc.Categories = append([]Category(nil), defaultManifest.Categories...)
	doc.Computed = append([]ComputedSeries(nil), defaultManifest.Computed...)
	charts := make(map[string]ChartOverride, len(defaultManifest.Charts))
	for id, override := range defaultManifest.Charts {
		charts[id] = override
	}
	doc.Charts = charts
	return &doc
}
