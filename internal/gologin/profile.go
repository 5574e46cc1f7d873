package gologin

// Proxy is the proxy block attached to a GoLogin browser profile.
type Proxy struct {
	Mode     string `json:"mode"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Enabled reports whether the profile actually routes through a proxy.
func (p Proxy) Enabled() bool {
	return p.Mode != "" && p.Mode != "none"
}

// Profile is one isolated browser identity managed by GoLogin,
// mapped 1:1 to a marketplace account.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Notes     string `json:"notes"`
	OS        string `json:"os"`
	UserAgent string `json:"userAgent"`
	Proxy     Proxy  `json:"proxy"`

	// assigned holds the corpus index of the in-flight publish attempt,
	// shifted by one so the zero value means "nothing assigned". Owned by
	// the orchestrator for the duration of one attempt.
	assigned int
}

// AssignListing marks the listing the next publish attempt will post.
func (p *Profile) AssignListing(index int) {
	p.assigned = index + 1
}

// ClearListing releases the assignment after the attempt completes.
func (p *Profile) ClearListing() {
	p.assigned = 0
}

// HasListing reports whether a listing is currently assigned.
func (p *Profile) HasListing() bool {
	return p.assigned > 0
}

// ListingIndex returns the assigned corpus index; only meaningful when
// HasListing is true.
func (p *Profile) ListingIndex() int {
	return p.assigned - 1
}
