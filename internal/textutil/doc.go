// Package textutil provides small text helpers for filename sanitization
// and CLI display.
package textutil
