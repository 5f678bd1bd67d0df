package tvarea

// VoteTally counts votes per video URL for the current round.
// URLs are kept in the order they first received a vote; that order breaks ties.
type VoteTally struct {
	order  []string
	counts map[string]int
}

// NewVoteTally creates an empty tally
func NewVoteTally() *VoteTally {
	return &VoteTally{counts: make(map[string]int)}
}

// Cast adds one vote for url
func (v *VoteTally) Cast(url string) {
	if _, seen := v.counts[url]; !seen {
		v.order = append(v.order, url)
	}
	v.counts[url]++
}

// Winner returns the URL with the strictly highest count, the earliest voted
// URL winning ties. With no votes cast it returns fallback.
func (v *VoteTally) Winner(fallback string) string {
	winner := fallback
	maxVotes := 0
	for _, url := range v.order {
		if votes := v.counts[url]; votes > maxVotes {
			maxVotes = votes
			winner = url
		}
	}
	return winner
}

// Count returns the votes cast for url this round
func (v *VoteTally) Count(url string) int {
	return v.counts[url]
}

// Len returns the number of distinct URLs voted for
func (v *VoteTally) Len() int {
	return len(v.order)
}

// Snapshot returns a copy of the current counts
func (v *VoteTally) Snapshot() map[string]int {
	out := make(map[string]int, len(v.counts))
	for url, votes := range v.counts {
		out[url] = votes
	}
	return out
}

// Reset clears all votes
func (v *VoteTally) Reset() {
	v.order = nil
	v.counts = make(map[string]int)
}
