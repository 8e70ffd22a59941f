// Package processor implements track metadata enhancement for the source library.
//
// The three cooperating pieces are the normalizer ([Processor.Process]), which builds the
// canonical "Title - Artist [Key]" display title from configured rules; the de-enhancer
// ([Clean], [Processor.SetOriginalTitles]), which recovers the pre-enhancement title so
// repeated runs converge instead of stacking suffixes; and the duplicate detector
// ([Processor.CheckDuplicates]), which groups tracks by normalized signature for operator
// review.
//
// Enhancement is a fixed point: every pass re-derives the working title from the track's
// original (de-enhanced) baseline, so applying it twice equals applying it once.
package processor
