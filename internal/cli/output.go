package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/vietddude/ethscan"
)

func render(w io.Writer, format string, result any) error {
	switch format {
	case "json":
		return renderJSON(w, result)
	case "table":
		return renderTable(w, result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func decimals(m ethscan.BalanceMap) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

func renderJSON(w io.Writer, result any) error {
	var v any
	switch r := result.(type) {
	case ethscan.BalanceMap:
		v = decimals(r)
	case ethscan.NestedBalanceMap:
		nested := make(map[string]map[string]string, len(r))
		for k, m := range r {
			nested[k] = decimals(m)
		}
		v = nested
	default:
		v = result
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func renderTable(w io.Writer, result any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)

	switch r := result.(type) {
	case ethscan.BalanceMap:
		_, _ = fmt.Fprintln(tw, "ADDRESS\tBALANCE")
		for _, k := range sortedKeys(r) {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, r[k].String())
		}
	case ethscan.NestedBalanceMap:
		_, _ = fmt.Fprintln(tw, "HOLDER\tTOKEN\tBALANCE")
		for _, holder := range sortedKeys(r) {
			for _, token := range sortedKeys(r[holder]) {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", holder, token, r[holder][token].String())
			}
		}
	default:
		return fmt.Errorf("cannot render %T as a table", result)
	}

	return tw.Flush()
}
