package services

import (
	"strconv"
	"strings"

	"pollsbot/contexts/polling/poll-engine/domain/entities"
)

// Classification rules are ordered; the first matching rule wins. Matching
// compares normalized option texts as sets, so option order never changes
// the outcome.
var (
	binaryPairs = [][]string{
		{"yes", "no"},
		{"да", "нет"},
		{"for", "against"},
	}
	approvalTriples = [][]string{
		{"for", "against", "abstain"},
		{"за", "против", "воздержаться"},
	}
)

// Classify derives the voting type from the option texts.
func Classify(options []string) entities.VotingType {
	normalized := make([]string, 0, len(options))
	for _, option := range options {
		normalized = append(normalized, normalizeOption(option))
	}

	if len(normalized) == 2 {
		for _, pair := range binaryPairs {
			if matchesSet(normalized, pair) {
				return entities.VotingTypeBinary
			}
		}
	}
	if len(normalized) == 3 {
		for _, triple := range approvalTriples {
			if matchesSet(normalized, triple) {
				return entities.VotingTypeApproval
			}
		}
	}
	if isRatingScale(normalized) {
		return entities.VotingTypeRating
	}
	return entities.VotingTypeChoice
}

func normalizeOption(option string) string {
	return strings.ToLower(strings.TrimSpace(option))
}

func matchesSet(options, vocabulary []string) bool {
	if len(options) != len(vocabulary) {
		return false
	}
	remaining := make(map[string]int, len(vocabulary))
	for _, word := range vocabulary {
		remaining[word]++
	}
	for _, option := range options {
		if remaining[option] == 0 {
			return false
		}
		remaining[option]--
	}
	return true
}

// isRatingScale reports whether the options are exactly the integers 1..N,
// in any order, for N >= 2.
func isRatingScale(options []string) bool {
	if len(options) < 2 {
		return false
	}
	seen := make(map[int]bool, len(options))
	for _, option := range options {
		value, err := strconv.Atoi(option)
		if err != nil || value < 1 || value > len(options) || seen[value] {
			return false
		}
		seen[value] = true
	}
	return true
}
