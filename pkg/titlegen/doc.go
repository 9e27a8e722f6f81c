// Package titlegen drives title generation. An Engine alternates between the
// n-gram model and the template generator, normalizes every candidate and
// keeps only titles that are new to the batch and not too close to any
// corpus title. Runs are bounded by an attempt budget and report whether the
// quota was met.
package titlegen
