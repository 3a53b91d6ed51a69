package game

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"chatquiz-service/internal/domain"
)

const (
	defaultQuestionTimeout = 10 * time.Second
	defaultReportDelay     = 5 * time.Second
)

// Engine orchestrates the game session state machine. All grading for one
// user happens inside that user's critical section, so the answer path and
// the timeout path can never both finalize the same question.
type Engine struct {
	users     UserStore
	questions QuestionStore
	settings  Settings
	timers    Timers
	outbound  Outbound

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	deferSend func(d time.Duration, fn func())
}

func NewEngine(users UserStore, questions QuestionStore, settings Settings, timers Timers, outbound Outbound) *Engine {
	return &Engine{
		users:     users,
		questions: questions,
		settings:  settings,
		timers:    timers,
		outbound:  outbound,
		locks:     make(map[string]*sync.Mutex),
		deferSend: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// NewEngineWithDefer is test-only: it lets tests run deferred report sends
// synchronously instead of through time.AfterFunc.
func NewEngineWithDefer(users UserStore, questions QuestionStore, settings Settings, timers Timers, outbound Outbound, deferSend func(time.Duration, func())) *Engine {
	e := NewEngine(users, questions, settings, timers, outbound)
	e.deferSend = deferSend
	return e
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

func (e *Engine) questionTimeout() time.Duration {
	return e.durationSetting("QUESTION_TIMEOUT", defaultQuestionTimeout)
}

func (e *Engine) reportDelay() time.Duration {
	return e.durationSetting("REPORT_DELAY", defaultReportDelay)
}

func (e *Engine) durationSetting(key string, fallback time.Duration) time.Duration {
	raw, ok := e.settings.Get(key)
	if !ok {
		return fallback
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		log.Printf("invalid %s value %q, falling back to %v", key, raw, fallback)
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// StartGame opens the next ungraded question for the user, creating the user
// on first contact. While a question is already open it re-prompts the same
// question without touching the timer.
func (e *Engine) StartGame(ctx context.Context, userID, name, email string) (string, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.users.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		user, err = e.users.CreateUser(ctx, userID, email, name)
		if err != nil {
			return "", err
		}
	}

	if user.Stage == domain.StageWaiting {
		q, err := e.questions.FindQuestion(ctx, user.CurrentQuestionID)
		if err != nil {
			return "", err
		}
		return msgAlreadyStarted + questionPrompt(*q) + msgHurry, nil
	}

	next, err := e.questions.NextUngraded(ctx, userID)
	if err != nil {
		return "", err
	}
	if next == nil {
		return msgAlreadyCompleted, nil
	}

	user.Stage = domain.StageWaiting
	user.CurrentQuestionID = next.ID
	if err := e.questions.CreateAnswerRecord(ctx, userID, next.ID); err != nil {
		return "", err
	}
	if err := e.users.Save(ctx, user); err != nil {
		return "", err
	}
	e.timers.Schedule(userID, next.ID, e.questionTimeout())
	return questionPrompt(*next), nil
}

// SubmitAnswer grades the open question against the given text. Outside the
// WAITING stage it degrades to guidance text: the question is already closed
// and a second submission must not mutate anything.
func (e *Engine) SubmitAnswer(ctx context.Context, userID, text string) (string, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.users.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return msgTypePlay, nil
	}
	if user.Stage != domain.StageWaiting {
		return msgAlreadyCompleted, nil
	}

	questionID := user.CurrentQuestionID
	remaining, found := e.timers.Cancel(userID)
	if !found {
		// Either the timeout callback is about to lose the race for this
		// user's section, or timer state is inconsistent. Grade with no
		// time left rather than fail.
		log.Printf("no active timer for user %s question %d, grading with zero time remaining", userID, questionID)
		remaining = 0
	}

	q, err := e.questions.FindQuestion(ctx, questionID)
	if err != nil {
		return "", err
	}

	chosen := ResolveOption(text)
	correct := chosen != 0 && chosen == q.CorrectIndex
	points := Score(correct, remaining)

	rec, err := e.questions.FindAnswerRecord(ctx, userID, questionID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		log.Printf("missing answer record for user %s question %d, recreating", userID, questionID)
		rec = &domain.AnswerRecord{UserID: userID, QuestionID: questionID}
	}
	rec.Answered = true
	rec.Correct = correct
	rec.Chosen = nil
	if chosen != 0 {
		c := chosen
		rec.Chosen = &c
	}
	rec.Score = points
	if err := e.questions.SaveAnswerRecord(ctx, rec); err != nil {
		return "", err
	}

	var b strings.Builder
	if correct {
		fmt.Fprintf(&b, "%s\nYou answered in %s seconds.\nYou earned **%d** points!",
			pickCorrectMsg(), ElapsedSeconds(e.questionTimeout(), remaining), points)
	} else {
		fmt.Fprintf(&b, "%s\nThe correct answer was: **%s**",
			pickWrongMsg(), OptionLabel(q.CorrectIndex))
	}

	user.TotalScore += points
	user.CurrentQuestionID = 0

	next, err := e.questions.NextUngraded(ctx, userID)
	if err != nil {
		return "", err
	}
	gameOver := next == nil
	if gameOver {
		user.Stage = domain.StageGameOver
		b.WriteString(msgCompleted)
		b.WriteString(msgReportComing)
	} else {
		user.Stage = domain.StageReadyForNext
		b.WriteString(msgNextHint)
	}
	if err := e.users.Save(ctx, user); err != nil {
		return "", err
	}

	if gameOver {
		e.scheduleReport(userID, user.Email)
	}
	return b.String(), nil
}

// HandleTimeout finalizes a question whose timer expired before any answer
// arrived. It is invoked by the timer facility; stale firings (a fast answer
// won the race, or the stage has moved on) are swallowed silently.
func (e *Engine) HandleTimeout(userID string, questionID int) {
	ctx := context.Background()
	text, address, gameOver, ok := e.finalizeTimeout(ctx, userID, questionID)
	if !ok {
		return
	}
	// The per-user section is released here; delivery never holds it.
	if err := e.outbound.Send(ctx, userID, address, text); err != nil {
		log.Printf("deliver timeout notice to user %s: %v", userID, err)
	}
	if gameOver {
		e.scheduleReport(userID, address)
	}
}

func (e *Engine) finalizeTimeout(ctx context.Context, userID string, questionID int) (text, address string, gameOver, ok bool) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.users.FindUser(ctx, userID)
	if err != nil {
		log.Printf("timeout for user %s: load user: %v", userID, err)
		return "", "", false, false
	}
	if user == nil || user.Stage != domain.StageWaiting || user.CurrentQuestionID != questionID {
		// Answer path finalized first, or the timer is stale.
		return "", "", false, false
	}

	q, err := e.questions.FindQuestion(ctx, questionID)
	if err != nil {
		log.Printf("timeout for user %s: load question %d: %v", userID, questionID, err)
		return "", "", false, false
	}

	rec, err := e.questions.FindAnswerRecord(ctx, userID, questionID)
	if err != nil {
		log.Printf("timeout for user %s: load answer record: %v", userID, err)
		return "", "", false, false
	}
	if rec == nil {
		rec = &domain.AnswerRecord{UserID: userID, QuestionID: questionID}
	}
	rec.Answered = true
	rec.Correct = false
	rec.Chosen = nil
	rec.Score = 0
	if err := e.questions.SaveAnswerRecord(ctx, rec); err != nil {
		log.Printf("timeout for user %s: save answer record: %v", userID, err)
		return "", "", false, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nThe correct answer was: **%s**", msgTimeout, OptionLabel(q.CorrectIndex))

	user.CurrentQuestionID = 0
	next, err := e.questions.NextUngraded(ctx, userID)
	if err != nil {
		log.Printf("timeout for user %s: next question lookup: %v", userID, err)
	}
	gameOver = err == nil && next == nil
	if gameOver {
		user.Stage = domain.StageGameOver
		b.WriteString(msgCompleted)
		b.WriteString(msgReportComing)
	} else {
		user.Stage = domain.StageReadyForNext
		b.WriteString(msgNextHint)
	}
	if err := e.users.Save(ctx, user); err != nil {
		log.Printf("timeout for user %s: save user: %v", userID, err)
	}
	return b.String(), user.Email, gameOver, true
}

// scheduleReport pushes the final report after a short pause. time.AfterFunc
// runs outside any per-user section, so score queries keep working while the
// report is pending.
func (e *Engine) scheduleReport(userID, address string) {
	e.deferSend(e.reportDelay(), func() {
		ctx := context.Background()
		report, err := e.GetReport(ctx, userID)
		if err != nil {
			log.Printf("build report for user %s: %v", userID, err)
			return
		}
		if report == "" {
			return
		}
		if err := e.outbound.Send(ctx, userID, address, report); err != nil {
			log.Printf("deliver report to user %s: %v", userID, err)
		}
	})
}

// GetScore reports the user's running total; unknown users score zero.
func (e *Engine) GetScore(ctx context.Context, userID string) (string, error) {
	user, err := e.users.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	score := 0
	if user != nil {
		score = user.TotalScore
	}
	return fmt.Sprintf("Your score is: **%d** points", score), nil
}

// GetHelp lists the available commands with the live timeout value.
func (e *Engine) GetHelp() string {
	return helpText(int(e.questionTimeout().Milliseconds() / 1000))
}
