package lookup

import (
	"strings"

	"github.com/sagabooks/saga/pkg/textmatch"
)

// Scoring rules. Each rule is a named constant so the weights are testable
// and tunable in one place.
const (
	// ScoreAuthorMiss is the floor assigned when no candidate author matches
	// any target author; no further bonuses are evaluated once it applies.
	ScoreAuthorMiss = -2

	// ScoreTitleContains rewards the target title containing the candidate
	// title as a substring.
	ScoreTitleContains = 2

	// ScoreVolumePhrase rewards a target title that spells out "book N" when
	// the candidate carries volume N.
	ScoreVolumePhrase = 1

	// ScoreSeriesContains rewards the candidate's series name appearing in
	// the target title.
	ScoreSeriesContains = 1

	// ScoreSeriesEcho penalizes candidates whose own title is nearly the
	// series name, which is what a series landing page looks like.
	ScoreSeriesEcho = -2

	// AuthorMatchThreshold is the similarity above which two author names
	// count as the same person.
	AuthorMatchThreshold = 0.70

	// SeriesEchoThreshold is the similarity above which a candidate title
	// and its series name count as the same string.
	SeriesEchoThreshold = 0.95
)

// SelectBest scores every candidate against the target record and returns
// the winner, or nil when nothing is an acceptable match. Ties keep the
// first-seen candidate so result order from the source is preserved.
func SelectBest(candidates []Candidate, targetTitle string, targetAuthors []string) *Candidate {
	normTitle := textmatch.NormalizeTitle(targetTitle)
	normAuthors := make([]string, 0, len(targetAuthors))
	for _, a := range targetAuthors {
		normAuthors = append(normAuthors, textmatch.NormalizeAuthor(a))
	}

	var best *Candidate
	bestScore := 0

	for i := range candidates {
		c := &candidates[i]
		score := scoreCandidate(c, normTitle, normAuthors)
		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}

	// A candidate with zero author overlap sits at the floor and is never
	// accepted, even when it was the only result.
	if best == nil || bestScore <= ScoreAuthorMiss {
		return nil
	}

	// Sanity gate: the winning title and the target title must contain one
	// another in some direction, otherwise a pile of small bonuses could
	// push through a substantively different book.
	candTitle := textmatch.NormalizeTitle(best.Title)
	if !strings.Contains(normTitle, candTitle) && !strings.Contains(candTitle, normTitle) {
		return nil
	}

	return best
}

func scoreCandidate(c *Candidate, normTitle string, normAuthors []string) int {
	authorMatches := 0
	for _, target := range normAuthors {
		for _, name := range c.Authors {
			if textmatch.Similarity(target, textmatch.NormalizeAuthor(name)) > AuthorMatchThreshold {
				authorMatches++
			}
		}
	}
	if authorMatches == 0 {
		return ScoreAuthorMiss
	}

	score := authorMatches
	candTitle := textmatch.NormalizeTitle(c.Title)

	if strings.Contains(normTitle, candTitle) {
		score += ScoreTitleContains
	}
	if c.SeriesVolume != "" && strings.Contains(normTitle, "book "+c.SeriesVolume) {
		score += ScoreVolumePhrase
	}

	if c.SeriesTitle != "" {
		candSeries := textmatch.NormalizeTitle(c.SeriesTitle)
		if strings.Contains(normTitle, candSeries) {
			score += ScoreSeriesContains
		}
		if textmatch.Similarity(candTitle, candSeries) > SeriesEchoThreshold {
			score += ScoreSeriesEcho
		}
		score += textmatch.SharedTokenCount(candSeries, normTitle, AuthorMatchThreshold)
	}

	score += textmatch.SharedTokenCount(candTitle, normTitle, AuthorMatchThreshold)

	return score
}
