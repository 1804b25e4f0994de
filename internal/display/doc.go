// Package display provides terminal rendering helpers for the interactive
// assessment session: the completion progress bar and the domain overview.
package display
