// Package dataset indexes a tree of face images and mirrors its directory
// structure under output roots.
//
// Indexing produces one ImageRecord per qualifying file: the absolute source
// path and the path relative to the input root. How the relative path is
// turned into a save target depends on the OutputMode:
//
//   - Rebased: the save path is the bare relative path, so callers can
//     prepend their own prefix later (the corruption grid prepends
//     {outdir}/{severity}/{corruption}).
//   - Fixed: the save path is the relative path joined onto a fixed root.
//
// Exactly one mode is active for a Dataset. Mirroring is idempotent:
// directories that already exist are skipped, never reported as errors.
package dataset
