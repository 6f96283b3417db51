// Package version holds the build version of vlsetup.
package version

// Version is stamped at release time via -ldflags "-X".
var Version = "1.4.0"
