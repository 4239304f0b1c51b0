package submit

import "fmt"

// Outcome combines the results of the remote and local sinks.
type Outcome int

const (
	BothFailed Outcome = iota
	RemoteOnly
	LocalOnly
	BothOK
)

func combine(remoteOK, localOK bool) Outcome {
	switch {
	case remoteOK && localOK:
		return BothOK
	case remoteOK:
		return RemoteOnly
	case localOK:
		return LocalOnly
	default:
		return BothFailed
	}
}

func (o Outcome) String() string {
	switch o {
	case BothOK:
		return "both_ok"
	case RemoteOnly:
		return "remote_only"
	case LocalOnly:
		return "local_only"
	default:
		return "both_failed"
	}
}

// Delivered reports whether at least one sink accepted the entry.
func (o Outcome) Delivered() bool {
	return o != BothFailed
}

// Message is the user-facing status line.
func (o Outcome) Message() string {
	switch o {
	case BothOK:
		return "Work log submitted and saved locally."
	case RemoteOnly:
		return "Work log submitted. Saving the local copy failed."
	case LocalOnly:
		return "Work log saved locally. Submitting to the server failed."
	default:
		return "Submission failed. Nothing was delivered, please try again."
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText accepts the names produced by String.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, v := range []Outcome{BothFailed, RemoteOnly, LocalOnly, BothOK} {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown submission outcome %q", text)
}
