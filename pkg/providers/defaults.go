package providers

// defaultBaseURLs are the community mirrors used when no providers file is
// configured. We are not affiliated with any of them.
var defaultBaseURLs = []string{
	"https://youtube.076.ne.jp/",
	"https://vid.puffyan.us/",
	"https://inv.riverside.rocks/",
	"https://invidio.xamh.de/",
	"https://y.com.sb/",
	"https://invidious.sethforprivacy.com/",
	"https://invidious.tiekoetter.com/",
	"https://inv.bp.projectsegfau.lt/",
	"https://inv.vern.cc/",
	"https://invidious.nerdvpn.de/",
	"https://inv.privacy.com.de/",
	"https://invidious.rhyshl.live/",
	"https://invidious.slipfox.xyz/",
	"https://invidious.weblibre.org/",
	"https://invidious.namazso.eu/",
}

// DefaultList returns the built-in mirror list.
func DefaultList() *List {
	ps := make([]Provider, 0, len(defaultBaseURLs))
	for _, base := range defaultBaseURLs {
		ps = append(ps, Provider{BaseURL: base})
	}
	l, err := NewList(ps...)
	if err != nil {
		panic("invalid built-in provider list: " + err.Error())
	}
	return l
}
