/*
Package templating provides the pun and template side of title generation.

A Generator fills a fixed set of text/template surface patterns with words
drawn from a Vocabulary. Draws of nouns and events are steered away from
words already used in the current batch, and structural phrase families
such as "Operation ..." or "... Makeover" are capped per batch. All batch
state lives in a Usage value owned by the caller, so one Generator can serve
many independent batches.

Every rendered pattern is passed through the shared title normalizer before
it is returned.
*/
package templating
