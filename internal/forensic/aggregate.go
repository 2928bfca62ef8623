package forensic

// PenaltyCeiling caps the total forensic penalty applied to a trust score.
// Forensic findings nudge a score toward review, they never sink a document
// on their own.
const PenaltyCeiling = 15.0

// Aggregate folds individual check results into a Report. Results with zero
// confidence contribute nothing to the penalty: the check could not produce
// a meaningful finding (unsupported input, timeout, parse failure) and a
// non-finding must never punish the document.
func Aggregate(checks []Check, results []Result) Report {
	byName := make(map[string]Check, len(checks))
	for _, c := range checks {
		byName[c.Name()] = c
	}

	report := Report{Results: results}
	var penalty float64
	for _, r := range results {
		if !r.Suspicious || r.Confidence <= 0 {
			continue
		}
		c, ok := byName[r.Name]
		if !ok {
			continue
		}
		penalty += c.Penalty(r)
	}
	if penalty > PenaltyCeiling {
		penalty = PenaltyCeiling
	}
	if penalty < 0 {
		penalty = 0
	}
	report.Penalty = penalty
	return report
}
