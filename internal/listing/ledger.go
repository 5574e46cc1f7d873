// Posted-listing ledger: one durable text file per profile, one posted
// title per line. Line-appends keep earlier records intact if a write is
// interrupted, which is the whole durability contract.

package listing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"marketbot/internal/gologin"
)

// ErrNoListingAssigned means a record was requested for a profile that
// has no listing index assigned to its current publish attempt.
var ErrNoListingAssigned = errors.New("profile has no listing index assigned")

// Ledger records which listing titles a profile has already posted.
type Ledger interface {
	// Posted returns the profile's posted-title set; empty when no
	// record exists yet.
	Posted(profileID string) (mapset.Set[string], error)
	// Record resolves index against the corpus and durably appends the
	// title to the profile's record.
	Record(profileID string, index int) error
	// Reset clears the profile's record. Idempotent.
	Reset(profileID string) error
}

// FileLedger is the file-backed Ledger, one <profileID>.txt per profile.
type FileLedger struct {
	dir    string
	corpus *Corpus
	log    *logrus.Logger

	mu sync.Mutex
}

func NewFileLedger(dir string, corpus *Corpus, log *logrus.Logger) *FileLedger {
	return &FileLedger{dir: dir, corpus: corpus, log: log}
}

func (l *FileLedger) path(profileID string) string {
	return filepath.Join(l.dir, profileID+".txt")
}

func (l *FileLedger) Posted(profileID string) (mapset.Set[string], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	posted := mapset.NewSet[string]()

	lines, err := LoadLines(l.path(profileID))
	if err != nil {
		if os.IsNotExist(err) {
			return posted, nil
		}
		return nil, fmt.Errorf("could not read posted record for %s: %w", profileID, err)
	}

	for _, line := range lines {
		if line != "" {
			posted.Add(line)
		}
	}
	return posted, nil
}

func (l *FileLedger) Record(profileID string, index int) error {
	title, err := l.corpus.Title(index)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("could not create posted dir: %w", err)
	}

	f, err := os.OpenFile(l.path(profileID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open posted record for %s: %w", profileID, err)
	}
	defer f.Close()

	if _, err := f.WriteString(title + "\n"); err != nil {
		return fmt.Errorf("could not append posted title for %s: %w", profileID, err)
	}

	l.log.Infof("💾 Recorded listing %d (%s) as posted by profile %s", index, title, profileID)
	return nil
}

// RecordFor records the listing currently assigned to the profile.
func (l *FileLedger) RecordFor(profile *gologin.Profile) error {
	if !profile.HasListing() {
		return fmt.Errorf("%w: profile %s", ErrNoListingAssigned, profile.ID)
	}
	return l.Record(profile.ID, profile.ListingIndex())
}

func (l *FileLedger) Reset(profileID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("could not create posted dir: %w", err)
	}
	if err := os.WriteFile(l.path(profileID), nil, 0644); err != nil {
		return fmt.Errorf("could not reset posted record for %s: %w", profileID, err)
	}
	return nil
}
