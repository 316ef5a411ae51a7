// Package normalize canonicalizes free text before it is stored or queried.
//
// A Normalizer is constructed explicitly and passed to the components that
// need it; there is no package-level instance. The Persian normalizer unifies
// the Arabic and Persian code points that look identical on screen but compare
// unequal, so that "كتاب" written with an Arabic kaf and "کتاب" written with a
// Persian keheh deduplicate and match as the same text.
package normalize
