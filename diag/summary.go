package diag

import "gopkg.in/yaml.v2"

// Summary is the serializable job-end report shape.
type Summary struct {
	TotalDiagnostics int            `yaml:"total_diagnostics"`
	CountsByKind     map[Kind]int   `yaml:"counts_by_kind"`
}

// BuildSummary snapshots r into a Summary suitable for serialization.
func (r *Report) BuildSummary() Summary {
	return Summary{
		TotalDiagnostics: r.Total(),
		CountsByKind:     r.CountsByKind(),
	}
}

// YAML renders the summary the way `--report-format yaml` emits it,
// reusing gopkg.in/yaml.v2 exactly as the teacher's go.mod already depended
// on it (there for Exchange rule-definition files; here for diagnostics).
func (s Summary) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
