package types

// CleanResult holds the outcome of a cleanup attempt for a single file.
type CleanResult struct {
	SourcePath      string `json:"source_path"`
	RuleName        string `json:"rule_name,omitempty"`
	Action          Action `json:"action,omitempty"`
	DestinationPath string `json:"destination_path,omitempty"`
	Applied         bool   `json:"applied"`
	Error           error  `json:"error,omitempty"`
}

// RunSummary aggregates the results of one cleanup run.
type RunSummary struct {
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
}

// Summarize computes run totals from per-file results.
func Summarize(results []CleanResult) RunSummary {
	s := RunSummary{Scanned: len(results)}
	for _, r := range results {
		if r.Action != "" {
			s.Matched++
		}
		if r.Applied {
			s.Applied++
		}
		if r.Error != nil {
			s.Failed++
		}
	}
	return s
}
