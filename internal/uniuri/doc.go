// Package uniuri generates random strings from a character set without modulo bias.
// It backs bootstrap passwords and session IDs.
package uniuri
