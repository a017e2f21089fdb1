// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package evaluation

import (
	"fmt"
	"io"
	"strings"
)

// FormatReport renders the summary as
//
//	Precision@5: 0.1234
//	Recall@5: 0.5678
//	...
//	Average Total Reward: 12.3
func FormatReport(r *Result) string {
	var b strings.Builder
	for _, k := range r.KValues {
		fmt.Fprintf(&b, "Precision@%d: %.4f\n", k, r.Precision[k])
		fmt.Fprintf(&b, "Recall@%d: %.4f\n", k, r.Recall[k])
	}
	fmt.Fprintf(&b, "Average Total Reward: %.1f\n", r.AvgReward)
	return b.String()
}

// WriteReport writes FormatReport(r) to w.
func WriteReport(w io.Writer, r *Result) error {
	_, err := io.WriteString(w, FormatReport(r))
	return err
}
