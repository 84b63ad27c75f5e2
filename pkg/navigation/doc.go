// Package navigation provides a minimal navigation layer for hosts that have
// none of their own: a back-stack of screens that follows the engine forward
// and reports back-navigation to it.
package navigation
