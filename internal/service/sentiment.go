package service

import (
	"regexp"
	"strings"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var (
	positiveWords = wordSet(
		"amazing", "awesome", "beautiful", "best", "breathtaking", "delicious", "enjoyed",
		"excellent", "fantastic", "friendly", "fun", "good", "great", "happy", "incredible",
		"love", "loved", "lovely", "memorable", "perfect", "relaxing", "stunning",
		"wonderful", "recommend",
	)
	negativeWords = wordSet(
		"awful", "bad", "boring", "cancelled", "crowded", "dirty", "disappointed",
		"disappointing", "expensive", "hate", "hated", "horrible", "overpriced", "poor",
		"rude", "scam", "sick", "stressful", "terrible", "unsafe", "worst", "nightmare",
	)
	negators = wordSet("not", "never", "no", "hardly", "didn't", "wasn't", "isn't", "weren't", "don't", "nothing")

	tokenPattern = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Sentiment scores text against fixed positive and negative vocabularies.
// A negator up to two words before a term flips it ("not good").
func Sentiment(text string) string {
	tokens := tokenPattern.FindAllString(strings.ToLower(strings.ReplaceAll(text, "’", "'")), -1)
	score := 0
	for i, tok := range tokens {
		var polarity int
		switch {
		case positiveWords[tok]:
			polarity = 1
		case negativeWords[tok]:
			polarity = -1
		default:
			continue
		}
		for j := max(0, i-2); j < i; j++ {
			if negators[tokens[j]] {
				polarity = -polarity
				break
			}
		}
		score += polarity
	}
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
