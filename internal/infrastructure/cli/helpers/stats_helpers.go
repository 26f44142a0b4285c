package helpers

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/doeshing/recogaize/internal/domain"
)

// TermStatistic represents how often a term appears across captions
type TermStatistic struct {
	Term  string
	Count int
}

// HistoryStatistics summarises archived requests.
type HistoryStatistics struct {
	Total           int
	Successful      int
	AverageDuration time.Duration
	Formats         map[string]int
	TermFrequency   map[string]int
}

// captions are short; articles and prepositions would dominate otherwise
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "on": {}, "in": {}, "with": {},
	"and": {}, "is": {}, "at": {}, "to": {}, "its": {}, "it": {}, "are": {},
}

// AnalyzeHistoryRecords computes statistics over records.
func AnalyzeHistoryRecords(records []domain.HistoryRecord) HistoryStatistics {
	stats := HistoryStatistics{
		Total:         len(records),
		Formats:       make(map[string]int),
		TermFrequency: make(map[string]int),
	}

	var totalMS int64
	for _, rec := range records {
		totalMS += rec.DurationMS
		if rec.Format != "" {
			stats.Formats[rec.Format]++
		}
		if !rec.Success {
			continue
		}
		stats.Successful++
		for _, term := range captionTerms(rec.Caption) {
			stats.TermFrequency[term]++
		}
	}
	if len(records) > 0 {
		stats.AverageDuration = time.Duration(totalMS/int64(len(records))) * time.Millisecond
	}
	return stats
}

func captionTerms(caption string) []string {
	fields := strings.FieldsFunc(strings.ToLower(caption), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := fields[:0]
	for _, f := range fields {
		if _, skip := stopWords[f]; skip {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// CalculateTopTerms returns the top N most frequent terms
// If limit is 0 or negative, returns all terms
func CalculateTopTerms(termFrequency map[string]int, limit int) []TermStatistic {
	stats := convertFrequencyMapToStatistics(termFrequency)
	sortStatisticsByFrequency(stats)

	if shouldLimitResults(limit, len(stats)) {
		return stats[:limit]
	}
	return stats
}

// convertFrequencyMapToStatistics converts a map to a slice of TermStatistic
func convertFrequencyMapToStatistics(frequency map[string]int) []TermStatistic {
	stats := make([]TermStatistic, 0, len(frequency))
	for term, count := range frequency {
		stats = append(stats, TermStatistic{
			Term:  term,
			Count: count,
		})
	}
	return stats
}

// sortStatisticsByFrequency sorts statistics by count (descending) then by term (ascending)
func sortStatisticsByFrequency(stats []TermStatistic) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Term < stats[j].Term
		}
		return stats[i].Count > stats[j].Count
	})
}

func shouldLimitResults(limit int, actualLength int) bool {
	return limit > 0 && actualLength > limit
}

// CalculateSuccessRate calculates the success rate as a percentage
func CalculateSuccessRate(successfulCount int, totalCount int) float64 {
	if totalCount == 0 {
		return 0.0
	}
	return float64(successfulCount) / float64(totalCount) * 100.0
}
