package domain

// Stage is a player's current position in the session state machine.
type Stage string

const (
	// StageIdle marks a freshly created player with nothing presented yet.
	StageIdle Stage = "IDLE"
	// StageWaiting means a question is open and its timer is running.
	StageWaiting Stage = "WAITING"
	// StageReadyForNext means the last question was graded and more remain.
	StageReadyForNext Stage = "READY_FOR_NEXT"
	// StageGameOver means every question has a terminal answer record.
	StageGameOver Stage = "GAME_OVER"
)

// User is a single player's session state. The engine reloads and saves it
// on every interaction; nothing lives only in memory between calls.
type User struct {
	ID                string
	DisplayName       string
	Email             string
	Stage             Stage
	CurrentQuestionID int // set while StageWaiting, zero otherwise
	TotalScore        int
}

// Question is an MCQ with exactly four options. Position defines game
// progression: the next question is the first, by Position, that the
// player has no answer record for.
type Question struct {
	ID           int
	Position     int
	Text         string
	Options      [4]string
	CorrectIndex int // 1-4
}

// AnswerRecord is the durable outcome of one player's encounter with one
// question. It is created unanswered when the question is presented; exactly
// one terminal write flips Answered, after which the record never changes.
type AnswerRecord struct {
	UserID     string
	QuestionID int
	Answered   bool
	Chosen     *int // nil means timed out or never answered
	Correct    bool
	Score      int
}
