package listing

import (
	"fmt"
	"math/rand"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

// Selector orders the not-yet-posted listings for a profile. When the
// profile has exhausted the corpus it resets the profile's ledger and
// starts the rotation over with every listing back in play.
type Selector struct {
	corpus *Corpus
	ledger Ledger
	rng    *rand.Rand
	log    *logrus.Logger
}

// NewSelector builds a selector. Pass a seeded rng in tests; nil gets a
// time-seeded one.
func NewSelector(corpus *Corpus, ledger Ledger, rng *rand.Rand, log *logrus.Logger) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{corpus: corpus, ledger: ledger, rng: rng, log: log}
}

// UnpostedIndices returns a uniformly random permutation of the corpus
// indices the profile has not posted yet. An empty corpus yields an
// empty sequence (nothing to post, not an error).
func (s *Selector) UnpostedIndices(profileID string) ([]int, error) {
	if s.corpus.Len() == 0 {
		return nil, nil
	}

	posted, err := s.ledger.Posted(profileID)
	if err != nil {
		return nil, err
	}

	postedKeys := mapset.NewSet[string]()
	for title := range posted.Iter() {
		postedKeys.Add(NormalizeTitle(title))
	}

	var unposted []int
	for index, title := range s.corpus.Titles() {
		if !postedKeys.Contains(NormalizeTitle(title)) {
			unposted = append(unposted, index)
		}
	}

	if len(unposted) > 0 {
		s.shuffle(unposted)
		s.log.Infof("📋 Found %d unposted listings for profile %s", len(unposted), profileID)
		return unposted, nil
	}

	//Corpus exhausted: reset the record and reshuffle everything.
	if err := s.ledger.Reset(profileID); err != nil {
		return nil, fmt.Errorf("could not reset exhausted record: %w", err)
	}
	s.log.Infof("🔄 All listings have been posted for profile %s. Resetting record and reshuffling.", profileID)

	all := make([]int, s.corpus.Len())
	for i := range all {
		all[i] = i
	}
	s.shuffle(all)
	return all, nil
}

// Pick chooses one index uniformly at random from a candidate sequence.
func (s *Selector) Pick(indices []int) int {
	return indices[s.rng.Intn(len(indices))]
}

func (s *Selector) shuffle(indices []int) {
	s.rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
}
