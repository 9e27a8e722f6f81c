/*
Package textnorm implements the lexical layer shared by every title producer:
a permissive tokenizer, its inverse, and the canonicalization pipeline that
every generated candidate passes through before it is accepted.

All functions are pure and safe for concurrent use.
*/
package textnorm
