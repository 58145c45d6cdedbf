package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jbweber/kvmctl/internal/kvm"
	"github.com/jbweber/kvmctl/internal/transport"
	"github.com/jbweber/kvmctl/internal/xmlmap"
)

// TableFormatter formats results as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatDomains formats a domain listing as a table sorted by name.
func (f *TableFormatter) FormatDomains(domains map[string]kvm.DomainInfo) (string, error) {
	if len(domains) == 0 {
		return "No domains found\n", nil
	}

	withTitle := false
	for _, d := range domains {
		if d.Title != "" {
			withTitle = true
			break
		}
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		header := "ID\tNAME\tSTATE"
		if withTitle {
			header += "\tTITLE"
		}
		_, _ = fmt.Fprintln(w, header)
	}

	for _, name := range kvm.SortedNames(domains) {
		d := domains[name]
		id := "-"
		if d.ID >= 0 {
			id = fmt.Sprintf("%d", d.ID)
		}
		row := fmt.Sprintf("%s\t%s\t%s", id, name, d.State)
		if withTitle {
			row += "\t" + d.Title
		}
		_, _ = fmt.Fprintln(w, row)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatNetworks formats a network listing as a table sorted by name.
func (f *TableFormatter) FormatNetworks(networks map[string]kvm.NetworkInfo) (string, error) {
	if len(networks) == 0 {
		return "No networks found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tSTATE\tAUTOSTART\tPERSISTENT")
	}

	for _, name := range kvm.SortedNames(networks) {
		n := networks[name]
		persistent := "-"
		if n.Persistent != nil {
			persistent = yesNo(*n.Persistent)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, n.State, yesNo(n.Autostart), persistent)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatValue formats a parsed result. Maps print as "key: value" lines,
// table rows as columns sorted by name. XML mappings have no tabular form
// and print as YAML.
func (f *TableFormatter) FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return line(val), nil
	case transport.Result:
		return line(val.Stdout), nil
	case xmlmap.Mapping:
		return (&YAMLFormatter{}).FormatValue(val)
	case map[string]string:
		return f.keyValue(sortedKeys(val), func(k string) any { return val[k] }), nil
	case map[string]any:
		return f.keyValue(sortedKeys(val), func(k string) any { return val[k] }), nil
	case map[string]map[string]string:
		return f.sections(val), nil
	case []map[string]string:
		return f.rows(val), nil
	default:
		return line(fmt.Sprintf("%v", val)), nil
	}
}

func (f *TableFormatter) keyValue(keys []string, value func(string) any) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s:\t%v\n", k, value(k))
	}
	_ = w.Flush()
	return buf.String()
}

func (f *TableFormatter) sections(s map[string]map[string]string) string {
	var buf bytes.Buffer
	for _, name := range sortedKeys(s) {
		buf.WriteString(name + ":\n")
		w := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
		for _, k := range sortedKeys(s[name]) {
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", k, s[name][k])
		}
		_ = w.Flush()
	}
	return buf.String()
}

func (f *TableFormatter) rows(rows []map[string]string) string {
	if len(rows) == 0 {
		return "No rows\n"
	}

	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))
	}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = row[c]
			if cells[i] == "" {
				cells[i] = "-"
			}
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
	return buf.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func line(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
