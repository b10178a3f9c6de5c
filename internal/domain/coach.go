package domain

import (
	"time"

	"github.com/google/uuid"
)

// Passage is a retrieved knowledge-base chunk with its similarity score
type Passage struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source"`   // e.g. "anses", "ciqual", "inserm"
	Category   string  `json:"category"` // nutrition|wellness|metabolism|sport|health
	Similarity float32 `json:"similarity"`
}

// UserContext carries the profile data used to personalize coach answers.
// All fields are optional; zero values mean "unknown".
type UserContext struct {
	Goal           string   `json:"goal,omitempty"` // weight_loss, maintain, muscle_gain
	Age            int      `json:"age,omitempty"`
	Weight         float64  `json:"weight,omitempty"`
	ActivityLevel  string   `json:"activityLevel,omitempty"`
	SleepHours     float64  `json:"sleepHours,omitempty"`
	StressLevel    int      `json:"stressLevel,omitempty"`
	CaloriesToday  int      `json:"caloriesToday,omitempty"`
	TargetCalories int      `json:"targetCalories,omitempty"`
	RecentPatterns []string `json:"recentPatterns,omitempty"`
}

// CoachAnswer is the result of one coach question
type CoachAnswer struct {
	ConversationID uuid.UUID `json:"conversationId"`
	Answer         string    `json:"answer"`
	Citations      []string  `json:"citations"`
	Passages       []Passage `json:"passages"`
	// OutOfScope is set when no knowledge-base passage cleared the similarity
	// threshold and the answer was generated without retrieved evidence.
	OutOfScope bool `json:"outOfScope"`
}

// ConversationTurn is one persisted question/answer exchange
type ConversationTurn struct {
	ID         uuid.UUID
	UserID     string
	Question   string
	Answer     string
	Citations  []string
	PassageIDs []string
	CreatedAt  time.Time
}
