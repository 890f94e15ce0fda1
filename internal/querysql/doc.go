// Package querysql builds the parameterized SQL used by the fingerprint store.
//
// Two rules hold for every statement produced here:
//   - Values are NEVER interpolated into SQL text; ids travel as ? parameters.
//   - Every multi-row SELECT carries an ORDER BY. The cursor-stitching reader
//     depends on all rows of one fingerprint being contiguous.
package querysql
