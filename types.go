package ipfsapi

// MessageResponse is a plain status message returned by the daemon.
//
// [Client.LogLevel] returns one:
//
//	resp, err := client.LogLevel(ctx, "dht", "debug")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(resp.Message) // Changed log level of 'dht' to 'debug'
type MessageResponse struct {
	// Message is the human-readable status, usually newline terminated.
	Message string `json:"Message"`
}

// StringList is a list of strings returned by the daemon.
//
// [Client.LogLs] returns the daemon's logging subsystems as a StringList:
//
//	list, err := client.LogLs(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range list.Strings {
//	    fmt.Println(s)
//	}
type StringList struct {
	Strings []string `json:"Strings"`
}

// Contains reports whether s is in the list.
func (l *StringList) Contains(s string) bool {
	for _, v := range l.Strings {
		if v == s {
			return true
		}
	}
	return false
}

// VersionInfo describes the daemon build.
//
// Use [Client.Version] to retrieve it and [CheckCompatibility] to compare
// it against the versions this SDK supports.
type VersionInfo struct {
	// Version is the daemon version, e.g. "0.4.23".
	Version string `json:"Version"`

	// Commit is the git commit the daemon was built from, may be empty.
	Commit string `json:"Commit"`

	// Repo is the repository format version.
	Repo string `json:"Repo"`

	// System is the daemon's architecture and OS, e.g. "amd64/linux".
	System string `json:"System"`

	// Golang is the Go version the daemon was built with.
	Golang string `json:"Golang"`
}
