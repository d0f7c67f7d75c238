package ipfsapi

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CompatibilityStatus is the outcome of [CheckCompatibility].
type CompatibilityStatus int

const (
	// Unknown means the daemon version could not be parsed.
	Unknown CompatibilityStatus = iota

	// Compatible means the daemon version is inside [APIVersionRange].
	Compatible

	// Incompatible means the daemon version is outside [APIVersionRange].
	Incompatible
)

// String returns "compatible", "incompatible" or "unknown".
func (s CompatibilityStatus) String() string {
	switch s {
	case Compatible:
		return "compatible"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// CompatibilityResult describes how a daemon version relates to the
// versions this SDK supports.
type CompatibilityResult struct {
	Status           CompatibilityStatus
	ServerVersion    string
	SDKVersion       string
	TargetAPIVersion string
	SupportedRange   string
	Message          string
}

// IsCompatible returns true if Status is [Compatible].
func (r CompatibilityResult) IsCompatible() bool {
	return r.Status == Compatible
}

var supportedRange = mustConstraint(APIVersionRange)

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(fmt.Sprintf("ipfsapi: invalid version range %q: %v", s, err))
	}
	return c
}

// CheckCompatibility compares a daemon version against [APIVersionRange].
//
// Pre-release and build suffixes are ignored for the range check, so
// development builds such as "0.5.0-dev" count as their release.
//
//	info, err := client.Version(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if res := ipfsapi.CheckCompatibility(info.Version); !res.IsCompatible() {
//	    log.Printf("warning: %s", res.Message)
//	}
func CheckCompatibility(serverVersion string) CompatibilityResult {
	res := CompatibilityResult{
		ServerVersion:    serverVersion,
		SDKVersion:       Version,
		TargetAPIVersion: APIVersion,
		SupportedRange:   APIVersionRange,
	}

	v, err := semver.NewVersion(serverVersion)
	if err != nil {
		res.Status = Unknown
		res.Message = fmt.Sprintf("cannot parse daemon version %q: %v", serverVersion, err)
		return res
	}

	release, err := v.SetPrerelease("")
	if err == nil {
		release, err = release.SetMetadata("")
	}
	if err != nil {
		res.Status = Unknown
		res.Message = fmt.Sprintf("cannot normalize daemon version %q: %v", serverVersion, err)
		return res
	}

	if supportedRange.Check(&release) {
		res.Status = Compatible
		res.Message = fmt.Sprintf("daemon version %s is compatible with SDK %s (supported: %s)",
			serverVersion, Version, APIVersionRange)
		return res
	}

	res.Status = Incompatible
	res.Message = fmt.Sprintf("daemon version %s is not compatible with SDK %s (supported: %s)",
		serverVersion, Version, APIVersionRange)
	return res
}

// IsCompatible reports whether serverVersion is inside [APIVersionRange].
func IsCompatible(serverVersion string) bool {
	return CheckCompatibility(serverVersion).IsCompatible()
}

// MustBeCompatible panics unless serverVersion is inside [APIVersionRange].
func MustBeCompatible(serverVersion string) {
	if res := CheckCompatibility(serverVersion); !res.IsCompatible() {
		panic("ipfsapi: " + res.Message)
	}
}

// Version returns the daemon's version information.
//
//	info, err := client.Version(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("daemon %s (%s)\n", info.Version, info.System)
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var out VersionInfo
	if err := c.doJSON(ctx, &call{endpoint: "/version"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
