package game

import "strings"

const (
	// BaseScore is the score every player starts each game with.
	BaseScore = 100

	// PenaltyAmount is deducted for each completed-but-wrong answer.
	PenaltyAmount = 15
)

// FinalScore computes the authoritative score for a correct answer
// submitted after penalties wrong attempts. Never below floor.
func FinalScore(penalties, floor int) int {
	score := BaseScore - penalties*PenaltyAmount
	if score < floor {
		return floor
	}
	return score
}

// DeductPenalty applies one penalty to a running score, bounded at floor.
func DeductPenalty(current, floor int) int {
	score := current - PenaltyAmount
	if score < floor {
		return floor
	}
	return score
}

// ValidateLetterPool checks that every character of the answer key
// appears in the letter pool with sufficient multiplicity. Question
// authors must satisfy this before a question is playable; gameplay
// assumes it.
func ValidateLetterPool(answerKey, letterPool string) bool {
	counts := make(map[rune]int)
	for _, r := range strings.ToUpper(letterPool) {
		counts[r]++
	}
	for _, r := range strings.ToUpper(answerKey) {
		counts[r]--
		if counts[r] < 0 {
			return false
		}
	}
	return true
}
