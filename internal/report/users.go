package report

import (
	"context"
	"fmt"
	"strings"
)

// Users prints documents grouped by user id for collections named
// "<user>:<collection>". Collections without that format are skipped.
func (r *Reporter) Users(ctx context.Context, opts Options) error {
	collections, err := r.Store.ListCollections(ctx)
	if err != nil {
		return err
	}

	// Preserve first-seen user order so output is stable across runs.
	var order []string
	userDocs := make(map[string][]string)

	for _, name := range collections {
		user, _, found := strings.Cut(name, ":")
		if !found {
			continue
		}

		agg, err := Scan(ctx, r.Store, name, opts.Scan)
		if err != nil {
			return err
		}

		if _, seen := userDocs[user]; !seen {
			order = append(order, user)
		}
		userDocs[user] = append(userDocs[user], agg.SortedDocuments()...)
	}

	fmt.Fprintf(r.Out, "\nUsers' documents:\n")

	if len(order) == 0 {
		fmt.Fprintln(r.Out, "No user-scoped collections found")
		return nil
	}

	for _, user := range order {
		fmt.Fprintf(r.Out, "%s:\n", user)
		for i, doc := range userDocs[user] {
			fmt.Fprintf(r.Out, "      %d. %s\n", i+1, doc)
		}
		fmt.Fprintln(r.Out)
	}

	return nil
}
