package client

// AuthHint says how a candidate endpoint expects to be authenticated.
type AuthHint int

const (
	AuthNone AuthHint = iota
	AuthBasic
)

func (a AuthHint) String() string {
	if a == AuthBasic {
		return "basic"
	}
	return "none"
}

// EndpointCandidate is one URL the prober may try.
type EndpointCandidate struct {
	URL  string
	Auth AuthHint
}

// candidatePath is a vendor page path relative to the modem base URL.
type candidatePath struct {
	path string
	auth AuthHint
}

// defaultPaths is ordered by how specific each page is to one firmware
// family; the bare root page is the last resort.
var defaultPaths = []candidatePath{
	{"/cmconnectionstatus.html", AuthBasic},
	{"/network_setup.jst", AuthNone},
	{"/MotoConnection.asp", AuthNone},
	{"/MotoHome.asp", AuthNone},
	{"/cmSignalData.htm", AuthNone},
	{"/cmSignal.html", AuthNone},
	{"/", AuthNone},
}

// DefaultCandidates resolves the built-in page list against baseURL.
func DefaultCandidates(s interface{ URL(path string) string }) []EndpointCandidate {
	out := make([]EndpointCandidate, len(defaultPaths))
	for i, p := range defaultPaths {
		out[i] = EndpointCandidate{URL: s.URL(p.path), Auth: p.auth}
	}
	return out
}
