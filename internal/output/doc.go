// Package output provides YAML/JSON/MessagePack output for bomcov.
//
// # Output Types
//
// The package defines structured output for the bomcov commands:
//
//   - FactsOutput: facts extracted from a test report (bomcov extract)
//   - ClassifyOutput: per-component statuses with a summary (bomcov classify, annotate)
//   - BatchOutput: one JobOutput per annotated table (bomcov batch)
//
// StatusView renders a classification as a coloured terminal table instead.
//
// # Format Types
//
//   - YAML (default): human-readable
//   - JSON: machine-readable, same structure as YAML
//   - MessagePack: binary, keyed like the JSON output
//
// # Density Modes
//
//   - Sparse: counts only
//     Example: summary: {total: 4, ok: 2, sous_test: 1, notest: 1, unclassified: 0}
//
//   - Medium (default): one entry per component with status, PPVS, coverage and remark
//
//   - Dense: medium plus the matched rule and the full fact set, test occurrences included
//
// # Example Usage
//
//	out := output.NewClassifyOutput(result, facts)
//	f, _ := output.GetFormatter(output.FormatYAML)
//	err := f.FormatToWriter(os.Stdout, out, output.DensityMedium)
package output
