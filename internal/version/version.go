// Package version exposes the SiteBundler build version.
package version

// Version is the current SiteBundler version. Overridden at build time via
// -ldflags "-X git.home.luguber.info/inful/sitebundler/internal/version.Version=...".
var Version = "0.4.0-dev"
