// Package media uploads background and overlay assets. A file is optionally
// transcoded, its name normalised to a portable ASCII segment, checked against
// the selected strategy's size ceiling, and then handed to exactly one upload
// strategy.
package media
