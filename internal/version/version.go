// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.4.0"

// Milestones:
// 0.4.0 - Interactive explorer, scenario files, rotating log files
// 0.3.0 - Reflected light phase curves, exposure integration, JSON/CSV export
// 0.2.0 - Limb darkening and filters, Taylor maps in time, design matrix
// 0.1.0 - Initial release: emitted-light occultation fluxes with gradients
