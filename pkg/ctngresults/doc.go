// Package ctngresults repairs and summarizes CTng testbed result files.
//
// Quick start:
//
//	rep, err := ctngresults.Clean(ctx, "results/", 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range rep.Files {
//	    fmt.Printf("%s: %.3f\n", f.Name, f.MaxConvergeTime)
//	}
//
// Clean rewrites every .json file in the directory in place. Records whose
// monitor_id is above the threshold, or that carry no "M<n>" monitor_id at
// all, are removed permanently; no backup is kept.
package ctngresults
