/*
Package markov provides an in-memory n-gram model over tokenized titles,
with temperature and top-K sampling, plus an optional SQLite-backed Store
and a JSON snapshot format for keeping fitted models between runs.

A Model is built once from a corpus with Fit and is read-only while it
generates. All randomness comes from the *rand.Rand passed to the sampling
methods, so a seeded source gives reproducible output.
*/
package markov
