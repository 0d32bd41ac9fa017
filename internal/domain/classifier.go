package domain

// DefaultThreshold is the canonical classification boundary. Scores at or
// below it are positive, scores above it are negative. The historical
// system used 50, 60, and 70 in different entry points; 60 is the value its
// write path and broadcast gate agreed on, and it is the single boundary
// used everywhere here.
const DefaultThreshold = 60

const (
	positiveResponse = "Thank you for your positive feedback! We're glad to hear about your experience and appreciate you taking the time to share it with us."
	negativeResponse = "We apologize for any inconvenience you've experienced. Your feedback is important to us, and we will look into this matter immediately. A representative will contact you shortly to address your concerns."
)

// Classifier maps oracle scores to categories and canned responses using a
// single threshold. The same boundary gates the urgency broadcast.
type Classifier struct {
	threshold int
}

// NewClassifier creates a classifier with the given threshold. A threshold
// of 0 or less falls back to DefaultThreshold.
func NewClassifier(threshold int) Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Classifier{threshold: threshold}
}

// Threshold returns the configured boundary.
func (c Classifier) Threshold() int { return c.threshold }

// Classify is a pure function of the score and the threshold. It is total
// over the oracle's scale.
func (c Classifier) Classify(score int) Classification {
	if score > c.threshold {
		return Classification{Category: CategoryNegative, Response: negativeResponse}
	}
	return Classification{Category: CategoryPositive, Response: positiveResponse}
}
