// Package content holds the joke, quote and sticker catalogs and the
// Rotator that serves them.
//
// A Rotator draws uniformly at random from the items not yet served in the
// current cycle. Once every item has been served the cycle starts over, so a
// run of up to Len() draws never repeats an item. Each catalog gets its own
// Rotator.
package content
