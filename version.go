package pantomime

import "github.com/coreos/go-semver/semver"

// Version is the version of this module. It is written into the X-Mailer
// header and boundaries of messages this module creates.
var Version = semver.New("1.0.0")

// Mailer is the value written to X-Mailer.
func Mailer() string {
	return "Pantomime " + Version.String()
}
