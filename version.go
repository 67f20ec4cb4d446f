// Package buildcheck holds module-wide metadata for the buildcheck tool.
package buildcheck

// Version is the buildcheck release version.
const Version = "0.1.0"
