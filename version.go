package ipfsapi

// Version is the current SDK version.
//
// This version follows semantic versioning (https://semver.org/).
// The version is incremented according to the following rules:
//   - MAJOR: Breaking changes to the public API
//   - MINOR: New features, backwards compatible
//   - PATCH: Bug fixes, backwards compatible
const Version = "0.1.0"

// APIVersion is the daemon version this SDK was built and tested against.
//
// Use [Client.Version] to check the actual daemon version at runtime.
const APIVersion = "0.4.23"

// APIVersionRange is the range of daemon versions this SDK supports,
// expressed as a semver constraint.
//
// The upper bound is exclusive: the log tail endpoint was removed from
// later daemon releases.
const APIVersionRange = ">= 0.4.22, < 0.7.0"
