// Package metrics reduces per-(model, corruption) severity tables to the
// corruption robustness scores mVCE, RmVCE and mCEI.
//
// Input rows are grouped contiguously by model, one block of
// numCorruptions rows per model. Severity column 0 is the clean baseline;
// columns 1 through 5 hold results on corrupted data. Every input sequence
// must have a length that is an exact multiple of numCorruptions.
//
//   - mVCE: mean percentage error (100 - accuracy*100) over a severity band.
//   - RmVCE: mean error increase over the clean baseline over the same band.
//   - mCEI: mean cosine similarity over a severity band, as a percentage.
//
// All scores are rounded to two decimal places.
package metrics
